package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"syscall"

	"github.com/kevin07696/borica-gateway/internal/adapters/borica"
	"github.com/kevin07696/borica-gateway/internal/adapters/keys"
	"github.com/kevin07696/borica-gateway/internal/config"
	"github.com/kevin07696/borica-gateway/internal/domain"
	"github.com/kevin07696/borica-gateway/pkg/crypto"
	"github.com/kevin07696/borica-gateway/pkg/resilience"
	"go.uber.org/zap"
	"golang.org/x/term"
)

type CLI struct {
	variant    domain.MacVariant
	isResponse bool
	fieldsPath string
	keyPath    string
	passphrase string
	certPath   string
}

func main() {
	var (
		action     = flag.String("action", "", "Action to perform: mac, sign, verify, status, keygen")
		fieldsPath = flag.String("fields", "-", "JSON file with wire fields (- for stdin)")
		response   = flag.Bool("response", false, "Treat fields as a gateway response")
		variant    = flag.String("variant", "extended", "MAC variant: general or extended")
		keyPath    = flag.String("key", "", "Merchant private key PEM")
		passphrase = flag.String("passphrase", os.Getenv("PRIVATE_KEY_PASSPHRASE"), "Private key passphrase")
		certPath   = flag.String("cert", "", "Gateway certificate PEM")
		configPath = flag.String("config", os.Getenv("CONFIG_PATH"), "Config file for the status action")
		order      = flag.Int("order", -1, "Order number for the status action")
		original   = flag.Int("original", int(domain.TransactionTypeSale), "Original TRTYPE for the status action")
		outDir     = flag.String("out", ".", "Output directory for keygen")
		bits       = flag.Int("bits", 2048, "RSA key size for keygen")
		encrypt    = flag.Bool("encrypt", false, "Prompt for a passphrase and encrypt the generated key")
	)
	flag.Parse()

	if *action == "" {
		fmt.Println("Usage: borica -action=<action> [options]")
		fmt.Println("Actions:")
		fmt.Println("  mac    - Print the canonical MAC string of -fields")
		fmt.Println("  sign   - Print P_SIGN for -fields using -key")
		fmt.Println("  verify - Check P_SIGN of -fields against -cert")
		fmt.Println("  status - Query the gateway for -order (TRTYPE 90)")
		fmt.Println("  keygen - Write a test key pair and self-signed certificate to -out")
		os.Exit(1)
	}

	v, err := domain.ParseMacVariant(*variant)
	if err != nil {
		log.Fatal(err)
	}
	cli := &CLI{
		variant:    v,
		isResponse: *response,
		fieldsPath: *fieldsPath,
		keyPath:    *keyPath,
		passphrase: *passphrase,
		certPath:   *certPath,
	}

	switch *action {
	case "mac":
		cli.mac()
	case "sign":
		cli.sign()
	case "verify":
		cli.verify()
	case "status":
		cli.status(*configPath, *order, domain.TransactionType(*original))
	case "keygen":
		cli.keygen(*outDir, *bits, *encrypt)
	default:
		fmt.Printf("Unknown action: %s\n", *action)
		os.Exit(1)
	}
}

func (cli *CLI) readFields() domain.FieldMapping {
	var r io.Reader = os.Stdin
	if cli.fieldsPath != "-" {
		f, err := os.Open(cli.fieldsPath)
		if err != nil {
			log.Fatal("Failed to open fields file:", err)
		}
		defer f.Close()
		r = f
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		log.Fatal("Failed to read fields:", err)
	}
	fields, err := borica.DecodeResponseBody("application/json", raw)
	if err != nil {
		log.Fatal("Failed to decode fields:", err)
	}
	return fields
}

func (cli *CLI) engine() *crypto.SignatureEngine {
	reader := keys.NewFileSource("", zap.NewNop())
	engine, err := keys.LoadSignatureEngine(context.Background(), reader, keys.KeyPaths{
		PrivateKey:  cli.keyPath,
		Passphrase:  cli.passphrase,
		Certificate: cli.certPath,
	})
	if err != nil {
		log.Fatal("Failed to load keys:", err)
	}
	return engine
}

func (cli *CLI) mac() {
	mac, err := borica.BuildMAC(cli.readFields(), cli.isResponse, cli.variant)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(mac)
}

func (cli *CLI) sign() {
	if cli.keyPath == "" {
		log.Fatal("-key is required")
	}
	mac, err := borica.BuildMAC(cli.readFields(), cli.isResponse, cli.variant)
	if err != nil {
		log.Fatal(err)
	}
	sig, err := cli.engine().Sign([]byte(mac))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(sig)
}

func (cli *CLI) verify() {
	if cli.certPath == "" {
		log.Fatal("-cert is required")
	}
	fields := cli.readFields()
	mac, err := borica.BuildMAC(fields, cli.isResponse, cli.variant)
	if err != nil {
		log.Fatal(err)
	}
	ok, err := cli.engine().Verify([]byte(mac), fields.Get(domain.FieldSignature))
	if err != nil {
		log.Fatal(err)
	}
	if !ok {
		fmt.Println("signature: MISMATCH")
		os.Exit(2)
	}
	fmt.Println("signature: OK")
}

func (cli *CLI) status(configPath string, order int, original domain.TransactionType) {
	if order < 0 {
		log.Fatal("-order is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	logger, err := cfg.Logger.NewLogger()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	timeouts := resilience.DefaultTimeoutConfig()
	keyCtx, cancel := timeouts.KeyLoadContext(context.Background())
	defer cancel()

	reader, err := cfg.SecretReader(keyCtx, logger)
	if err != nil {
		log.Fatal(err)
	}
	engine, err := keys.LoadSignatureEngine(keyCtx, reader, cfg.KeyPaths())
	if err != nil {
		log.Fatal("Failed to load keys:", err)
	}

	client := borica.NewGatewayClient(cfg.GatewayClientConfig(), engine, logger, borica.WithTimeouts(timeouts))
	resp, err := client.CheckStatus(context.Background(), cfg.Borica.Terminal, order, original)
	if err != nil {
		log.Fatal(err)
	}

	lang := borica.ParseLanguage(cfg.Borica.Language)
	out := map[string]interface{}{
		"order":              resp.Order,
		"original_trtype":    resp.OriginalTransactionType,
		"rc":                 resp.ResponseCode,
		"action":             resp.Action,
		"successful":         resp.IsSuccessful(),
		"signature_verified": resp.SignatureVerified,
		"description":        resp.DescribeResponseCode(lang),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal(err)
	}
}

func (cli *CLI) keygen(outDir string, bits int, encrypt bool) {
	kp, err := crypto.GenerateTestKeyPair(bits)
	if err != nil {
		log.Fatal("Failed to generate key pair:", err)
	}

	privatePEM := []byte(kp.PrivateKeyPEM)
	if encrypt {
		fmt.Print("Passphrase: ")
		pass, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			log.Fatal("Failed to read passphrase:", err)
		}
		key, err := crypto.ParsePrivateKey(privatePEM, "")
		if err != nil {
			log.Fatal(err)
		}
		if privatePEM, err = crypto.EncryptPrivateKeyPKCS8(key, string(pass)); err != nil {
			log.Fatal(err)
		}
	}

	files := map[string][]byte{
		"merchant.key": privatePEM,
		"merchant.pub": []byte(kp.PublicKeyPEM),
		"merchant.cer": []byte(kp.CertificatePEM),
	}
	for name, content := range files {
		path := filepath.Join(outDir, name)
		if err := os.WriteFile(path, content, 0600); err != nil {
			log.Fatal("Failed to write ", path, ": ", err)
		}
		fmt.Println("wrote", path)
	}
	fmt.Println("fingerprint:", kp.Fingerprint)
}
