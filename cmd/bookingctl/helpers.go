package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
)

func newClient(api, token string) *resty.Client {
	c := resty.New().
		SetBaseURL(api).
		SetHeader("Accept", "application/json").
		SetTimeout(30 * time.Second)
	if token != "" {
		c.SetHeader("X-Admin-Token", token)
	}
	return c
}

// apiError renders a non-2xx response, preferring the service's error message.
func apiError(resp *resty.Response) error {
	var body struct {
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Message != "" {
		if len(body.Fields) > 0 {
			return fmt.Errorf("%s: %s %v", resp.Status(), body.Message, body.Fields)
		}
		return fmt.Errorf("%s: %s", resp.Status(), body.Message)
	}
	return fmt.Errorf("%s: %s", resp.Status(), resp.String())
}

// printJSON pretty-prints a JSON body to out.
func printJSON(out io.Writer, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		_, err = out.Write(raw)
		return err
	}
	buf.WriteByte('\n')
	_, err := out.Write(buf.Bytes())
	return err
}
