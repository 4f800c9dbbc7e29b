package protocol

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/annotateci/annotate-runner/common"
)

const (
	apiVersionHeader = "X-GitHub-Api-Version"
	apiVersion       = "2022-11-28"
	acceptJSON       = "application/vnd.github+json"

	maxIdleConnections = 1
	maxRedirects       = 10

	requestTimeout        = 1 * time.Minute
	idleConnectionTimeout = 100 * time.Second
	httpClientTimeout     = 100 * time.Second
)

// GitHubConnection issues authenticated requests against the GitHub REST
// API, either on github.com or on a GitHub Enterprise Server instance.
type GitHubConnection struct {
	Client     *http.Client
	APIURL     string
	Token      string
	AuthHeader string
	App        *AppCredentials
	Trace      bool
}

func (con *GitHubConnection) BuildURL(relativePath string, ppath, query map[string]string) (string, error) {
	url2, err := url.Parse(con.APIURL)
	if err != nil {
		return "", err
	}
	urlPath := relativePath
	re := regexp.MustCompile(`/*\{[^\}]+\}`)
	urlPath = re.ReplaceAllStringFunc(urlPath, func(s string) string {
		start := strings.Index(s, "{")
		end := strings.Index(s, "}")
		if val, ok := ppath[s[start+1:end]]; ok {
			return s[0:start] + val
		}
		return ""
	})
	url2.Path = path.Join(url2.Path, urlPath)
	q := url2.Query()
	for p, v := range query {
		q.Add(p, v)
	}
	url2.RawQuery = q.Encode()
	return url2.String(), nil
}

func (con *GitHubConnection) HTTPClient() *http.Client {
	if con.Client == nil {
		customTransport := http.DefaultTransport.(*http.Transport).Clone()
		customTransport.MaxIdleConns = maxIdleConnections
		customTransport.IdleConnTimeout = idleConnectionTimeout
		if v, ok := common.LookupEnvBool("SKIP_TLS_CERT_VALIDATION"); ok && v {
			//nolint:gosec // Intentionally allows insecure TLS when explicitly configured
			customTransport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}
		con.Client = &http.Client{
			Timeout:   httpClientTimeout,
			Transport: customTransport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		}
	}
	return con.Client
}

func (con *GitHubConnection) Request(method, requestURL string, requestBody, responseBody interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return con.RequestWithContext(ctx, method, requestURL, requestBody, responseBody)
}

func extractReader(body interface{}) (io.Reader, []string, error) {
	if body == nil {
		return nil, nil, nil
	}
	if buf, ok := body.(*bytes.Buffer); ok {
		return buf, []string{"application/octet-stream"}, nil
	}
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	if err := enc.Encode(body); err != nil {
		return nil, nil, err
	}
	return buf, []string{"application/json; charset=utf-8"}, nil
}

func getHeadersAsString(header http.Header) string {
	headerbuf := new(bytes.Buffer)
	if err := header.Write(headerbuf); err != nil {
		return err.Error()
	}
	return headerbuf.String()
}

func getBodyAsString(body interface{}) string {
	if buf, ok := body.(*bytes.Buffer); ok {
		return buf.String()
	}
	return ""
}

func setResponseBody(r io.Reader, body interface{}) error {
	if body == nil {
		return nil
	}
	if bresponse, ok := body.(*[]byte); ok {
		var err error
		*bresponse, err = io.ReadAll(r)
		if err != nil {
			return err
		}
	} else {
		dec := json.NewDecoder(r)
		if err := dec.Decode(body); err != nil {
			return err
		}
	}
	return nil
}

func (con *GitHubConnection) requestWithContextNoAuth(
	ctx context.Context, method, requesturl string, requestBody, responseBody interface{},
) (int, error) {
	buf, reqContentType, err := extractReader(requestBody)
	if err != nil {
		return 0, err
	}
	request, err := http.NewRequestWithContext(ctx, method, requesturl, buf)
	if err != nil {
		return 0, err
	}
	header := request.Header
	if len(reqContentType) > 0 {
		header["Content-Type"] = reqContentType
	}
	header.Set("Accept", acceptJSON)
	header.Set(apiVersionHeader, apiVersion)
	header["User-Agent"] = []string{"annotate-runner/1.0.0"}
	header["X-Request-Id"] = []string{uuid.NewString()}
	if con.Token != "" {
		header["Authorization"] = []string{"Bearer " + con.Token}
	} else if con.AuthHeader != "" {
		header["Authorization"] = []string{con.AuthHeader}
	}
	if con.Trace {
		fmt.Printf("Http %v Request started %v\nHeaders:\n%v\nBody: `%v`\n",
			method, requesturl, getHeadersAsString(request.Header), getBodyAsString(buf))
	}

	response, err := con.HTTPClient().Do(request)
	if err != nil {
		return 0, err
	}
	if response == nil {
		return 0, fmt.Errorf("failed to send request response is nil")
	}
	defer func() {
		if closeErr := response.Body.Close(); closeErr != nil {
			fmt.Printf("Failed to close response body: %v", closeErr)
		}
	}()
	var rbytes []byte
	var responseReader io.Reader
	failed := response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices
	readResponse := con.Trace || failed
	if responseBody != nil {
		responseReader = response.Body
		if readResponse {
			rbytes, err = io.ReadAll(response.Body)
			responseReader = bytes.NewReader(rbytes)
			if err != nil {
				rbytes = []byte("no response: " + err.Error())
			}
		}
	}
	traceMessage := fmt.Sprintf(
		"Http %v Request finished %v %v\nHeaders: \n%v\nBody: `%v`\n",
		method, response.StatusCode, requesturl,
		getHeadersAsString(response.Header), string(rbytes))
	if con.Trace {
		fmt.Print(traceMessage)
	}
	if failed {
		return response.StatusCode, fmt.Errorf("http failure: %v", traceMessage)
	}
	if response.StatusCode == http.StatusNoContent && responseBody != nil {
		return response.StatusCode, io.EOF
	}
	return response.StatusCode, setResponseBody(responseReader, responseBody)
}

// RequestWithContext sends one API request. An expired installation token
// is renewed once through the configured GitHub App credentials.
func (con *GitHubConnection) RequestWithContext(
	ctx context.Context, method, requestURL string, requestBody, responseBody interface{},
) error {
	statusCode, err := con.requestWithContextNoAuth(ctx, method, requestURL, requestBody, responseBody)
	if (statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden) && con.App != nil {
		tokenResponse, authErr := con.App.Authorize(ctx, con.HTTPClient(), con.APIURL)
		if authErr != nil {
			return authErr
		}
		con.Token = tokenResponse.Token
		_, err = con.requestWithContextNoAuth(ctx, method, requestURL, requestBody, responseBody)
		return err
	}
	return err
}
