package source

import (
	"context"
	"encoding/json"
	"os"

	"github.com/JonMunkholm/tokengrid/internal/grid"
)

// File reads records from a JSON array of flat objects:
//
//	[{"name": "deploy", "iss": "acct-1", "sub": "ci", "iat": 1700000000, "token": "eyJ..."}]
//
// The file is re-read on every call so edits show up on refresh.
type File struct {
	Path string
}

// Records decodes the file.
func (f File) Records(ctx context.Context) ([]grid.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, &FetchError{Source: f.Path, Err: err}
	}

	var records []grid.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &FetchError{Source: f.Path, Err: err}
	}
	if records == nil {
		records = []grid.Record{}
	}
	return records, nil
}
