package email

import (
	"bytes"
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/emersion/go-msgauth/dkim"
)

var dkimHeaderKeys = []string{
	"from",
	"to",
	"subject",
	"date",
	"mime-version",
	"content-type",
	"message-id",
}

// DKIMSigner adds a DKIM-Signature header to outgoing messages.
type DKIMSigner struct {
	domain   string
	selector string
	key      crypto.Signer
}

// NewDKIMSigner builds a signer from the SMTP_DKIM_* settings.
// It returns nil, nil when none of them is set.
func NewDKIMSigner(cfg Config) (*DKIMSigner, error) {
	selector := strings.TrimSpace(cfg.DKIMSelector)
	keyPath := strings.TrimSpace(cfg.DKIMKeyPath)
	domain := strings.TrimSpace(cfg.DKIMDomain)

	if selector == "" && keyPath == "" && cfg.DKIMPrivateKey == "" && domain == "" {
		return nil, nil
	}
	if selector == "" {
		return nil, fmt.Errorf("%w: SMTP_DKIM_SELECTOR is required when DKIM is enabled", ErrInvalidConfig)
	}

	var pemData []byte
	switch {
	case cfg.DKIMPrivateKey != "":
		pemData = []byte(cfg.DKIMPrivateKey)
	case keyPath != "":
		data, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, fmt.Errorf("%w: read DKIM private key: %v", ErrInvalidConfig, err)
		}
		pemData = data
	default:
		return nil, fmt.Errorf("%w: SMTP_DKIM_KEY_PATH or SMTP_DKIM_PRIVATE_KEY is required", ErrInvalidConfig)
	}

	key, err := parsePrivateKey(pemData)
	if err != nil {
		return nil, fmt.Errorf("%w: parse DKIM private key: %v", ErrInvalidConfig, err)
	}

	return &DKIMSigner{domain: strings.ToLower(domain), selector: selector, key: key}, nil
}

// Sign returns the message with a DKIM signature prepended. The signing domain
// defaults to the sender's domain. Messages already carrying a signature are
// returned unchanged.
func (s *DKIMSigner) Sign(message []byte, from string) ([]byte, error) {
	if s == nil || s.key == nil || hasDKIMSignature(message) {
		return message, nil
	}

	domain := s.domain
	if domain == "" {
		domain = addressDomain(from)
	}
	if domain == "" {
		return nil, errors.New("dkim: unable to determine signing domain")
	}

	var signed bytes.Buffer
	err := dkim.Sign(&signed, bytes.NewReader(toCRLF(message)), &dkim.SignOptions{
		Domain:                 domain,
		Selector:               s.selector,
		Signer:                 s.key,
		HeaderCanonicalization: dkim.CanonicalizationRelaxed,
		BodyCanonicalization:   dkim.CanonicalizationRelaxed,
		HeaderKeys:             dkimHeaderKeys,
	})
	if err != nil {
		return nil, fmt.Errorf("dkim: signing failed: %w", err)
	}
	return signed.Bytes(), nil
}

func parsePrivateKey(pemData []byte) (crypto.Signer, error) {
	for {
		block, rest := pem.Decode(pemData)
		if block == nil {
			return nil, errors.New("no private key found in PEM data")
		}

		switch block.Type {
		case "RSA PRIVATE KEY":
			return x509.ParsePKCS1PrivateKey(block.Bytes)
		case "PRIVATE KEY":
			key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
			if err != nil {
				return nil, err
			}
			signer, ok := key.(crypto.Signer)
			if !ok {
				return nil, errors.New("unsupported private key type in PKCS#8 container")
			}
			return signer, nil
		}
		pemData = rest
	}
}

func addressDomain(address string) string {
	address = strings.Trim(strings.TrimSpace(address), "<>")
	if i := strings.LastIndex(address, "@"); i >= 0 && i+1 < len(address) {
		return strings.ToLower(address[i+1:])
	}
	return ""
}

func hasDKIMSignature(message []byte) bool {
	upper := bytes.ToUpper(message)
	return bytes.HasPrefix(upper, []byte("DKIM-SIGNATURE:")) ||
		bytes.Contains(upper, []byte("\nDKIM-SIGNATURE:"))
}

func toCRLF(data []byte) []byte {
	if bytes.Contains(data, []byte("\r\n")) || !bytes.Contains(data, []byte("\n")) {
		return data
	}
	return bytes.ReplaceAll(data, []byte("\n"), []byte("\r\n"))
}
