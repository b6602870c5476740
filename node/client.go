package node

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/imroc/req"
	"github.com/tidwall/gjson"

	"github.com/varity-labs/varity-app-store/common"
)

var log = common.NewLog("node")

// Client JSON-RPC client of the token gateway
type Client struct {
	BaseURL     string
	AccessToken string
	Debug       bool
	client      *req.Req
}

// NewClientNode create gateway client. accessToken is sent as a bearer token when not empty.
func NewClientNode(url, accessToken string, timeout time.Duration, debug bool) *Client {
	api := req.New()
	if timeout > 0 {
		api.SetTimeout(timeout)
	}
	return &Client{
		BaseURL:     url,
		AccessToken: accessToken,
		Debug:       debug,
		client:      api,
	}
}

// BasicAuth encodes gateway credentials
func BasicAuth(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}

// Call issues one JSON-RPC request and returns the result member
func (c *Client) Call(ctx context.Context, method string, params []interface{}) (*gjson.Result, error) {
	header := req.Header{"Accept": "application/json"}
	if c.AccessToken != "" {
		header["Authorization"] = "Bearer " + c.AccessToken
	}
	body := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      time.Now().UnixNano(),
		"method":  method,
		"params":  params,
	}

	if c.Debug {
		log.Debug("gateway request", "url", c.BaseURL, "method", method, "params", params)
	}

	r, err := c.client.Post(c.BaseURL, req.BodyJSON(&body), header, ctx)
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway %s returned http %d: %s", method, r.Response().StatusCode, r.String())
	}

	if c.Debug {
		log.Debug("gateway response", "method", method, "body", r.String())
	}

	resp := gjson.ParseBytes(r.Bytes())
	if err := isError(&resp); err != nil {
		return nil, err
	}
	result := resp.Get("result")
	return &result, nil
}

func isError(result *gjson.Result) error {
	if !result.Exists() {
		return errors.New("empty gateway response")
	}
	errMember := result.Get("error")
	if !errMember.Exists() || errMember.Type == gjson.Null {
		return nil
	}
	return fmt.Errorf("gateway error [%d]: %s", errMember.Get("code").Int(), errMember.Get("message").String())
}
