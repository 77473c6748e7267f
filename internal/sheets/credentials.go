package sheets

import (
	"context"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"

	"ratesync/internal/pipeline"
)

var errNoPEMBlock = errors.New("no PEM block found")

// Scope grants read/write access to spreadsheets.
const Scope = "https://www.googleapis.com/auth/spreadsheets"

// Credentials are the fields of a service-account key file needed to sign
// token requests.
type Credentials struct {
	ClientEmail  string `json:"client_email"`
	PrivateKey   string `json:"private_key"`
	PrivateKeyID string `json:"private_key_id"`
	TokenURI     string `json:"token_uri"`
}

// ParseCredentials decodes a base64-encoded service-account JSON document.
// Every failure is a config error naming what is wrong with the secret.
func ParseCredentials(encoded string) (*Credentials, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, pipeline.NewConfigError("missing service account credentials (GOOGLE_SERVICE_ACCOUNT_B64)", nil)
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, pipeline.NewConfigError("service account credentials are not valid base64", err)
	}

	var creds Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return nil, pipeline.NewConfigError("service account credentials are not valid JSON", err)
	}

	var missing []string
	if creds.ClientEmail == "" {
		missing = append(missing, "client_email")
	}
	if creds.PrivateKey == "" {
		missing = append(missing, "private_key")
	}
	if len(missing) > 0 {
		return nil, pipeline.NewConfigError("service account credentials missing "+strings.Join(missing, ", "), nil)
	}

	// Keys pasted through env files often carry escaped newlines.
	creds.PrivateKey = strings.ReplaceAll(creds.PrivateKey, `\n`, "\n")
	if err := validateKey(creds.PrivateKey); err != nil {
		return nil, pipeline.NewConfigError("service account private_key is not a valid PEM RSA key", err)
	}

	if creds.TokenURI == "" {
		creds.TokenURI = google.JWTTokenURL
	}
	return &creds, nil
}

func validateKey(key string) error {
	block, _ := pem.Decode([]byte(key))
	if block == nil {
		return errNoPEMBlock
	}
	if _, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		return nil
	}
	_, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	return err
}

// TokenSource returns a caching source of bearer tokens for the sheets scope.
func (c *Credentials) TokenSource(ctx context.Context) oauth2.TokenSource {
	cfg := &jwt.Config{
		Email:        c.ClientEmail,
		PrivateKey:   []byte(c.PrivateKey),
		PrivateKeyID: c.PrivateKeyID,
		Scopes:       []string{Scope},
		TokenURL:     c.TokenURI,
	}
	return cfg.TokenSource(ctx)
}
