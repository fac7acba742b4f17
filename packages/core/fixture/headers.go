package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/abdul-hamid-achik/hookshot/packages/integrations"
	"github.com/xeipuuv/gojsonschema"
)

const (
	headersExt = ".headers.json"
	// cgiPrefix marks recorded request headers (HTTP_X_GITHUB_EVENT)
	cgiPrefix = "HTTP_"
)

// ErrInvalidCustomHeaders is returned when custom headers are not a JSON
// object of strings
var ErrInvalidCustomHeaders = errors.New("invalid custom headers")

var headersSchema = gojsonschema.NewStringLoader(`{
	"type": "object",
	"additionalProperties": {"type": "string"}
}`)

// ResolveHeaders returns the normalized headers recorded for the fixture.
// Each layer is normalized before it is merged, so a later layer replaces a
// header of the same name whatever its spelling.
func ResolveHeaders(integration integrations.Integration, fx *Fixture) (map[string]string, error) {
	headers := NormalizeHeaders(integration.Headers)

	if integration.EventHeader != "" {
		headers = MergeHeaders(headers, map[string]string{
			NormalizeKey(integration.EventHeader): EventName(fx.Name),
		})
	}

	sidecar, err := loadSidecar(SidecarPath(fx.Path))
	if err != nil {
		return nil, err
	}
	return MergeHeaders(headers, NormalizeHeaders(sidecar)), nil
}

// SidecarPath returns where the header file of a fixture lives
func SidecarPath(fixturePath string) string {
	return strings.TrimSuffix(fixturePath, fixtureExt) + headersExt
}

func loadSidecar(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read headers %s: %w", path, err)
	}

	headers, err := decodeHeaders(data)
	if err != nil {
		return nil, fmt.Errorf("%w: headers %s: %v", ErrInvalidFixture, path, err)
	}
	return headers, nil
}

// NormalizeHeaders converts recorded header keys to their wire form. Keys
// that collapse to the same header keep the value of the last key in sorted
// order.
func NormalizeHeaders(headers map[string]string) map[string]string {
	result := make(map[string]string, len(headers))
	for _, k := range slices.Sorted(maps.Keys(headers)) {
		result = MergeHeaders(result, map[string]string{NormalizeKey(k): headers[k]})
	}
	return result
}

// NormalizeKey strips the HTTP_ marker and turns underscores into hyphens
func NormalizeKey(key string) string {
	key = strings.TrimPrefix(key, cgiPrefix)
	return strings.ReplaceAll(key, "_", "-")
}

// MergeHeaders layers custom over resolved. A custom header replaces any
// resolved header of the same name, compared case-insensitively.
func MergeHeaders(resolved, custom map[string]string) map[string]string {
	result := maps.Clone(resolved)
	if result == nil {
		result = make(map[string]string)
	}

	for ck, cv := range custom {
		for rk := range result {
			if strings.EqualFold(rk, ck) {
				delete(result, rk)
			}
		}
		result[ck] = cv
	}
	return result
}

// ParseCustomHeaders parses the JSON object given with --custom-headers.
// An empty string yields no headers.
func ParseCustomHeaders(raw string) (map[string]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	headers, err := decodeHeaders([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCustomHeaders, err)
	}
	return headers, nil
}

func decodeHeaders(data []byte) (map[string]string, error) {
	result, err := gojsonschema.Validate(headersSchema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("not valid JSON: %v", err)
	}
	if !result.Valid() {
		var problems []string
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return nil, errors.New(strings.Join(problems, "; "))
	}

	var headers map[string]string
	if err := json.Unmarshal(data, &headers); err != nil {
		return nil, err
	}
	return headers, nil
}
