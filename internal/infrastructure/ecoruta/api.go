// Package ecoruta binds the EcoRuta REST contract: the auth gateway used by
// the session and typed services for the reference and activity resources.
package ecoruta

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ecoruta/portal/internal/infrastructure/apiclient"
)

// API is the subset of the API client the services depend on.
type API interface {
	Do(ctx context.Context, method, path string, query url.Values, body, out any, opts ...apiclient.RequestOption) error
}

// envelope is the {"data": ...} wrapper some endpoints answer with.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// decodeBody decodes raw into out, unwrapping a {"data": ...} envelope when
// the payload is one.
func decodeBody(raw json.RawMessage, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '{' {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err == nil {
			if data, ok := fields["data"]; ok {
				if _, hasID := fields["id"]; !hasID {
					trimmed = data
				}
			}
		}
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// itemPath joins a collection path and an id keeping the trailing slash the
// backend routes expect.
func itemPath(collection string, id int64, action ...string) string {
	p := strings.TrimRight(collection, "/") + "/" + strconv.FormatInt(id, 10) + "/"
	for _, a := range action {
		p += strings.Trim(a, "/") + "/"
	}
	return p
}
