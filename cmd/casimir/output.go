package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/casimir-one/casimir-go/pkg/services"
	"github.com/casimir-one/casimir-go/pkg/transport"
)

// printResult writes the returned envelope or the portal response to w.
func printResult(w io.Writer, res *services.Result) error {
	if res == nil {
		return nil
	}
	if res.Returned() {
		fmt.Fprintf(w, "Content-Type: %s\n", res.Envelope.ContentType())
		for k, v := range res.Envelope.HttpHeaders() {
			fmt.Fprintf(w, "%s: %s\n", k, v)
		}
		fmt.Fprintln(w)
		_, err := w.Write(res.Envelope.HttpBody())
		return err
	}
	return printResponse(w, res.Response)
}

func printResponse(w io.Writer, resp *transport.Response) error {
	if resp == nil {
		return nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, resp.Body, "", "  "); err != nil {
		_, err = w.Write(resp.Body)
		return err
	}
	out.WriteByte('\n')
	_, err := out.WriteTo(w)
	return err
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
