// Package storage provides JSON file persistence for registration code lists.
//
// The storage package writes the full record list to a single file (data/raw.json by
// default), creating the data directory when it is missing. Files are overwritten in
// place; there is no history and no atomic replace.
package storage
