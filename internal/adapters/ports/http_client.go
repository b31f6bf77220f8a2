package ports

import "net/http"

// HTTPClient is the transport used by the gateway client.
// *http.Client satisfies it; tests inject a stub.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
