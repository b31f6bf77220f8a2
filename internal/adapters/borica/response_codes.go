package borica

import (
	"strings"

	pkgerrors "github.com/kevin07696/borica-gateway/pkg/errors"
)

// Language selects the text of code descriptions
type Language string

const (
	LanguageBG Language = "BG"
	LanguageEN Language = "EN"
)

// ParseLanguage maps "EN" (any case) to English and everything else to Bulgarian
func ParseLanguage(value string) Language {
	if strings.EqualFold(strings.TrimSpace(value), string(LanguageEN)) {
		return LanguageEN
	}
	return LanguageBG
}

// ResponseCodeInfo describes an RC value returned by the gateway
type ResponseCodeInfo struct {
	Code        string
	English     string
	Bulgarian   string
	IsApproved  bool
	IsRetriable bool
	Category    pkgerrors.ErrorCategory
}

// Text returns the description in lang
func (i ResponseCodeInfo) Text(lang Language) string {
	if lang == LanguageEN {
		return i.English
	}
	return i.Bulgarian
}

func code(c, en, bg string, category pkgerrors.ErrorCategory, retriable bool) ResponseCodeInfo {
	return ResponseCodeInfo{
		Code:        c,
		English:     en,
		Bulgarian:   bg,
		IsApproved:  c == ResponseCodeApproved,
		IsRetriable: retriable,
		Category:    category,
	}
}

// ISO-8583 authorization codes
var isoResponseCodes = map[string]ResponseCodeInfo{
	"00": code("00", "Successfully completed", "Успешно завършена трансакция", pkgerrors.CategoryApproved, false),
	"01": code("01", "Refer to card issuer", "Обърнете се към издателя на картата", pkgerrors.CategoryDeclined, false),
	"04": code("04", "PICK UP", "Задържане на картата", pkgerrors.CategoryFraud, false),
	"05": code("05", "Do not Honour", "Отказана трансакция", pkgerrors.CategoryDeclined, false),
	"06": code("06", "Error", "Грешка", pkgerrors.CategorySystemError, true),
	"12": code("12", "Invalid transaction", "Невалидна трансакция", pkgerrors.CategoryInvalidRequest, false),
	"13": code("13", "Invalid amount", "Невалидна сума", pkgerrors.CategoryInvalidRequest, false),
	"14": code("14", "No such card", "Несъществуваща карта", pkgerrors.CategoryInvalidCard, false),
	"15": code("15", "No such issuer", "Несъществуващ издател", pkgerrors.CategoryInvalidCard, false),
	"17": code("17", "Customer cancellation 30 Format error", "Отказ от клиента / грешка във формата", pkgerrors.CategoryDeclined, false),
	"35": code("35", "Pick-up, card acceptor contact acquirer", "Задържане на картата, търговецът да се свърже с банката", pkgerrors.CategoryFraud, false),
	"36": code("36", "Pick up, card restricted", "Задържане на картата, картата е с ограничения", pkgerrors.CategoryFraud, false),
	"37": code("37", "Pick up, call acquirer security", "Задържане на картата, свържете се със сигурността на банката", pkgerrors.CategoryFraud, false),
	"38": code("38", "Pick up, Allowable PIN tries exceeded", "Задържане на картата, надвишен брой опити за ПИН", pkgerrors.CategoryFraud, false),
	"39": code("39", "No credit account", "Няма кредитна сметка", pkgerrors.CategoryInvalidCard, false),
	"40": code("40", "Requested function not supported", "Функцията не се поддържа", pkgerrors.CategoryInvalidRequest, false),
	"41": code("41", "Pick up, lost card", "Задържане на картата, изгубена карта", pkgerrors.CategoryFraud, false),
	"42": code("42", "No universal account", "Няма универсална сметка", pkgerrors.CategoryInvalidCard, false),
	"43": code("43", "Pick up, stolen card", "Задържане на картата, открадната карта", pkgerrors.CategoryFraud, false),
	"54": code("54", "Expired card / target", "Изтекла карта", pkgerrors.CategoryExpiredCard, false),
	"55": code("55", "Incorrect PIN", "Грешен ПИН", pkgerrors.CategoryInvalidCard, true),
	"56": code("56", "No card record", "Няма запис за картата", pkgerrors.CategoryInvalidCard, false),
	"57": code("57", "Transaction not permitted to cardholder", "Трансакцията не е разрешена за картодържателя", pkgerrors.CategoryDeclined, false),
	"58": code("58", "Transaction not permitted to terminal", "Трансакцията не е разрешена за терминала", pkgerrors.CategoryDeclined, false),
	"59": code("59", "Suspected fraud", "Съмнение за измама", pkgerrors.CategoryFraud, false),
	"85": code("85", "No reason to decline", "Няма причина за отказ", pkgerrors.CategoryDeclined, false),
	"88": code("88", "Cryptographic failure", "Криптографска грешка", pkgerrors.CategorySystemError, true),
	"89": code("89", "Authentication failure", "Неуспешна автентикация", pkgerrors.CategoryDeclined, false),
	"91": code("91", "Issuer or switch is inoperative", "Издателят или комутаторът не работи", pkgerrors.CategoryNetworkError, true),
	"95": code("95", "Reconcile error / Auth Not found", "Грешка при равнение / авторизацията не е намерена", pkgerrors.CategorySystemError, false),
	"96": code("96", "System Malfunction", "Системна грешка", pkgerrors.CategorySystemError, true),
}

// e-Gateway negative error codes
var gatewayErrorCodes = map[string]ResponseCodeInfo{
	"-1":  code("-1", "A mandatory request field is missing", "В заявката не е попълнено задължително поле", pkgerrors.CategoryInvalidRequest, false),
	"-2":  code("-2", "The request contains a field with an invalid name", "Заявката съдържа поле с некоректно име", pkgerrors.CategoryInvalidRequest, false),
	"-3":  code("-3", "The authorization host is not responding or the response format is wrong", "Aвторизационният хост не отговаря или форматът на отговора е неправилен", pkgerrors.CategoryNetworkError, true),
	"-4":  code("-4", "No connection to the authorization host", "Няма връзка с авторизационния хост", pkgerrors.CategoryNetworkError, true),
	"-9":  code("-9", "Invalid card expiry date", "Грешна дата на валидност на картата", pkgerrors.CategoryInvalidCard, false),
	"-11": code("-11", "Invalid CURRENCY field in the request", "Грешка в поле \"Валута\" в заявката", pkgerrors.CategoryInvalidRequest, false),
	"-12": code("-12", "Invalid merchant identifier", "Грешка в \"Идентификатор на търговец\"", pkgerrors.CategoryInvalidRequest, false),
	"-15": code("-15", "Invalid RRN field in the request", "Грешка в поле \"RRN\" в заявката", pkgerrors.CategoryInvalidRequest, false),
	"-17": code("-17", "Access to the payment server denied (e.g. P_SIGN check failed)", "Отказан достъп до платежния сървър ( напр. грешка при проверка на P_SIGN)", pkgerrors.CategoryInvalidRequest, false),
	"-19": code("-19", "Authentication request error or authentication failed", "Грешка в искането за автентикация или неуспешна автентикация", pkgerrors.CategoryDeclined, false),
	"-20": code("-20", "Allowed time difference between merchant and e-Gateway servers exceeded", "Разрешената разлика между времето на сървъра на търговеца и e-Gateway сървъра е надвишена", pkgerrors.CategoryInvalidRequest, true),
	"-21": code("-21", "The transaction has already been executed", "Трансакцията вече е била изпълнена", pkgerrors.CategoryDeclined, false),
	"-24": code("-24", "The request contains values that cannot be processed, e.g. currency differs from the terminal currency", "Заявката съдържа стойности за полета, които не могат да бъдат обработени. Например валутата е различна от валутата на терминала.", pkgerrors.CategoryInvalidRequest, false),
	"-25": code("-25", "The transaction was declined (e.g. by the cardholder)", "Трансакцията е отказана (напр. от картодържателя)", pkgerrors.CategoryDeclined, false),
	"-27": code("-27", "Invalid merchant name", "Неправилно име на търговеца", pkgerrors.CategoryInvalidRequest, false),
	"-32": code("-32", "Duplicate declined transaction", "Дублирана отказана трансакция", pkgerrors.CategoryDeclined, false),
}

// GetResponseCodeInfo looks up an RC value in the ISO and gateway tables
func GetResponseCodeInfo(rc string) (ResponseCodeInfo, bool) {
	rc = strings.TrimSpace(rc)
	if info, ok := isoResponseCodes[rc]; ok {
		return info, true
	}
	if info, ok := gatewayErrorCodes[rc]; ok {
		return info, true
	}
	return ResponseCodeInfo{Code: rc, Category: pkgerrors.CategoryUnknown}, false
}

// DescribeResponseCode returns the localized text for rc, or "" when unknown
func DescribeResponseCode(rc string, lang Language) string {
	info, ok := GetResponseCodeInfo(rc)
	if !ok {
		return ""
	}
	return info.Text(lang)
}

var actionDescriptions = map[string][2]string{
	// {BG, EN}
	"0": {"Успешно завършена трансакция", "Transaction successfully completed"},
	"1": {"Дублирана трансакция", "Duplicate transaction"},
	"2": {"Отказана трансакция", "Transaction declined"},
	"3": {"Грешка при обработка на трансакцията", "Transaction processing error"},
}

// DescribeAction returns the localized text for an ACTION value, or "" when unknown
func DescribeAction(action string, lang Language) string {
	texts, ok := actionDescriptions[strings.TrimSpace(action)]
	if !ok {
		return ""
	}
	if lang == LanguageEN {
		return texts[1]
	}
	return texts[0]
}

// DescribeResponseCode returns the localized text of the response RC
func (r *TransactionResponse) DescribeResponseCode(lang Language) string {
	return DescribeResponseCode(r.ResponseCode, lang)
}

// ActionDescription returns the localized text of the response ACTION
func (r *TransactionResponse) ActionDescription(lang Language) string {
	return DescribeAction(r.Action, lang)
}

// CodeInfo returns the table entry for the response RC
func (r *TransactionResponse) CodeInfo() ResponseCodeInfo {
	info, _ := GetResponseCodeInfo(r.ResponseCode)
	return info
}
