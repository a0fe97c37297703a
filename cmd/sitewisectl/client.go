package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

func newRequest(method, url string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tokenFlag != "" {
		req.Header.Set("Authorization", "Bearer "+tokenFlag)
	}
	return req, nil
}

func doRequest(req *http.Request) ([]byte, error) {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}

func doGet(url string) ([]byte, error) {
	req, err := newRequest(http.MethodGet, url, nil, "")
	if err != nil {
		return nil, err
	}
	return doRequest(req)
}

func doPostJSON(url string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := newRequest(http.MethodPost, url, bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}
	return doRequest(req)
}

func doPostFile(url, path, contentType string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	req, err := newRequest(http.MethodPost, url, f, contentType)
	if err != nil {
		return nil, err
	}
	return doRequest(req)
}

// doGetToFile streams a download to path, or stdout when path is "-".
func doGetToFile(url, path string) error {
	req, err := newRequest(http.MethodGet, url, nil, "")
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}
	out := os.Stdout
	if path != "-" {
		out, err = os.Create(path)
		if err != nil {
			return err
		}
		defer func() { _ = out.Close() }()
	}
	_, err = io.Copy(out, resp.Body)
	return err
}
