/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package xbase

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

var (
	httpTimeout = 5 * time.Second
)

// makeSimpleRequest used to make a simple http request.
func makeSimpleRequest(ctx context.Context, method string, url string, payload interface{}) (*http.Request, error) {
	var body []byte

	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		body = b
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(ctx), nil
}

func httpDo(method string, url string, payload interface{}) (*http.Response, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), httpTimeout)
	req, err := makeSimpleRequest(ctx, method, url, payload)
	if err != nil {
		cancel()
		return nil, func() {}, err
	}

	client := &http.Client{}
	resp, err := client.Do(req)
	return resp, func() {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		cancel()
	}, err
}

// HTTPPost used to do restful post request.
func HTTPPost(url string, payload interface{}) (*http.Response, func(), error) {
	return httpDo("POST", url, payload)
}

// HTTPPut used to do restful put request.
func HTTPPut(url string, payload interface{}) (*http.Response, func(), error) {
	return httpDo("PUT", url, payload)
}

// HTTPDelete used to do restful delete request.
func HTTPDelete(url string) (*http.Response, func(), error) {
	return httpDo("DELETE", url, nil)
}

// HTTPGetResponse used to do restful get request and keep the response.
func HTTPGetResponse(url string) (*http.Response, func(), error) {
	return httpDo("GET", url, nil)
}

// HTTPGet used to do restful get request.
func HTTPGet(url string) (string, error) {
	resp, cleanup, err := httpDo("GET", url, nil)
	defer cleanup()
	if err != nil {
		return "", err
	}
	return HTTPReadBody(resp), nil
}

// HTTPReadBody returns the body of the response.
func HTTPReadBody(resp *http.Response) string {
	if resp != nil && resp.Body != nil {
		bodyBytes, err := ioutil.ReadAll(resp.Body)
		if err != nil {
			return err.Error()
		}
		return string(bodyBytes)
	}
	return ""
}
