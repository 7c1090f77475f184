package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const accountHeader = "X-Account"

var httpClient = &http.Client{Timeout: 15 * time.Second}

// doRequest sends the request to the configured daemon and decodes the json
// reply into resp, if not nil. The configured account is attached to
// authenticated requests.
func doRequest(
	method, path string, body, resp interface{}, authenticated bool,
) error {
	state, err := getState()
	if err != nil {
		return err
	}
	server, ok := state["server"]
	if !ok || server == "" {
		return errors.New("set server with `config set server`")
	}

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(
		method, strings.TrimSuffix(server, "/")+path, reqBody,
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if authenticated {
		account := state["account"]
		if account == "" {
			return errors.New("set account with `config set account`")
		}
		req.Header.Set(accountHeader, account)
	}

	res, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("unable to connect to otcd: %w", err)
	}
	defer res.Body.Close()

	buf, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	if res.StatusCode >= http.StatusBadRequest {
		var errReply struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(buf, &errReply); err != nil || errReply.Error == "" {
			return fmt.Errorf("request failed with status %s", res.Status)
		}
		return errors.New(errReply.Error)
	}

	if resp == nil || len(buf) == 0 {
		return nil
	}
	return json.Unmarshal(buf, resp)
}

func get(path string) error {
	var resp map[string]interface{}
	if err := doRequest(http.MethodGet, path, nil, &resp, false); err != nil {
		return err
	}
	printRespJSON(resp)
	return nil
}

func send(method, path string, body interface{}) error {
	var resp map[string]interface{}
	if err := doRequest(method, path, body, &resp, true); err != nil {
		return err
	}
	if resp == nil {
		fmt.Println("done")
		return nil
	}
	printRespJSON(resp)
	return nil
}
