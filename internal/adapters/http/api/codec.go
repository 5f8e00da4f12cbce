package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/xeipuuv/gojsonschema"
)

const (
	contentTypeJSON = "application/json"
	contentTypeCBOR = "application/cbor"
)

var (
	cborDec = mustDecMode(cbor.DecOptions{
		DefaultMapType:   reflect.TypeOf(map[string]any(nil)),
		MaxArrayElements: 1 << 20,
	})
	cborEnc = mustEncMode(cbor.EncOptions{
		Time: cbor.TimeRFC3339Nano,
		Sort: cbor.SortCanonical,
	})
)

func mustDecMode(opts cbor.DecOptions) cbor.DecMode {
	dm, err := opts.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}

func mustEncMode(opts cbor.EncOptions) cbor.EncMode {
	em, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

// isCBOR reports whether the media type in header is CBOR.
func isCBOR(header string) bool {
	if header == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		return false
	}
	return mt == contentTypeCBOR
}

// wantsCBOR reports whether the Accept header prefers CBOR over JSON.
func wantsCBOR(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		if isCBOR(strings.TrimSpace(part)) {
			return true
		}
	}
	return false
}

// readBody reads at most limit bytes of the request body.
func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, ErrTooLarge
		}
		return nil, err
	}
	return body, nil
}

// decode validates body against schema and decodes it into dst. CBOR bodies
// are validated in their generic form.
func decode(body []byte, cborBody bool, schema *gojsonschema.Schema, dst any) error {
	var doc gojsonschema.JSONLoader
	if cborBody {
		var generic any
		if err := cborDec.Unmarshal(body, &generic); err != nil {
			return fmt.Errorf("decode cbor: %w", err)
		}
		doc = gojsonschema.NewGoLoader(generic)
	} else {
		if len(body) == 0 {
			return errors.New("empty body")
		}
		doc = gojsonschema.NewBytesLoader(body)
	}

	if err := validate(schema, doc); err != nil {
		return err
	}

	if cborBody {
		if err := cborDec.Unmarshal(body, dst); err != nil {
			return fmt.Errorf("decode cbor: %w", err)
		}
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// encode renders v as CBOR or JSON and returns the body with its content type.
func encode(v any, asCBOR bool) ([]byte, string, error) {
	if asCBOR {
		b, err := cborEnc.Marshal(v)
		return b, contentTypeCBOR, err
	}
	b, err := json.Marshal(v)
	return b, contentTypeJSON + "; charset=utf-8", err
}
