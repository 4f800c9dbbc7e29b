package protocol

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	// JWT token expiration time
	jwtExpiration = 5 * time.Minute

	// Error message prefix for authorization failures
	authFailurePrefix = "Failed to Authorize: "
)

// AppCredentials authenticates as a GitHub App installation. The Checks
// API only accepts app installation tokens, a plain user token falls back
// to workflow command annotations.
type AppCredentials struct {
	AppID          string
	InstallationID string
	Key            *rsa.PrivateKey
}

type InstallationTokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// ReadAppPrivateKey parses the PEM encoded RSA key GitHub issues for an app.
func ReadAppPrivateKey(file string) (*rsa.PrivateKey, error) {
	//nolint:gosec // Path is provided by application configuration, not user input
	cont, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(cont)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in %v", file)
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%v does not contain an RSA private key", file)
	}
	return key, nil
}

// Authorize exchanges a signed app JWT for an installation access token.
func (app *AppCredentials) Authorize(ctx context.Context, c *http.Client, apiURL string) (*InstallationTokenResponse, error) {
	tokenresp := &InstallationTokenResponse{}
	now := time.Now().UTC().Add(-30 * time.Second)
	token2 := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.StandardClaims{
		Issuer:    app.AppID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(jwtExpiration).Unix(),
	})
	stkn, err := token2.SignedString(app.Key)
	if err != nil {
		return nil, err
	}

	tokenURL, err := url.Parse(apiURL)
	if err != nil {
		return nil, errors.New(authFailurePrefix + err.Error())
	}
	tokenURL.Path = path.Join(tokenURL.Path, "app/installations", app.InstallationID, "access_tokens")
	tokenreq, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL.String(), nil)
	if err != nil {
		return nil, errors.New(authFailurePrefix + err.Error())
	}
	tokenreq.Header["Authorization"] = []string{"Bearer " + stkn}
	tokenreq.Header["Accept"] = []string{acceptJSON}
	tokenres, err := c.Do(tokenreq)
	if err != nil {
		return nil, errors.New(authFailurePrefix + err.Error())
	}
	defer func() {
		_ = tokenres.Body.Close() // Ignore close error
	}()
	if tokenres.StatusCode != http.StatusCreated && tokenres.StatusCode != http.StatusOK {
		responseBytes, _ := io.ReadAll(tokenres.Body)
		return nil, errors.New("Failed to Authorize, service responded with code " + fmt.Sprint(tokenres.StatusCode) +
			": " + string(responseBytes))
	}
	dec := json.NewDecoder(tokenres.Body)
	if err := dec.Decode(tokenresp); err != nil {
		return nil, err
	}
	return tokenresp, nil
}
