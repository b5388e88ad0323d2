package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/docrank/internal/db"
)

// CreateVectorIndex creates an FT index over hash keys with a single HNSW
// cosine vector field. An already existing index is not an error.
func (s *Store) CreateVectorIndex(ctx context.Context, def *db.VectorIndexDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("index name is required")
	}
	if def.Dim <= 0 {
		return fmt.Errorf("vector field requires positive DIM")
	}

	vectorArgs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(def.Dim),
		"DISTANCE_METRIC", "COSINE",
	}
	if def.M > 0 {
		vectorArgs = append(vectorArgs, "M", strconv.Itoa(def.M))
	}
	if def.EFConstruct > 0 {
		vectorArgs = append(vectorArgs, "EF_CONSTRUCTION", strconv.Itoa(def.EFConstruct))
	}

	args := []string{
		def.Name,
		"ON", "HASH",
		"PREFIX", "1", def.Prefix,
		"SCHEMA",
		def.VectorField, "VECTOR", "HNSW", strconv.Itoa(len(vectorArgs)),
	}
	args = append(args, vectorArgs...)

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return nil
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// IndexExists probes index existence via FT.INFO; "unknown index name" means
// absent.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return true, nil
}

// SearchKNN runs a KNN vector similarity search via FT.SEARCH and returns the
// matched keys with their cosine distances, nearest first.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) ([]db.KNNMatch, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	queryStr := fmt.Sprintf("*=>[KNN %d @%s $BLOB AS __distance]", q.K, q.VectorField)

	args := []string{
		q.IndexName, queryStr,
		"SORTBY", "__distance",
		"RETURN", "1", "__distance",
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", VectorToBlob(q.Vector),
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "unknown index name") {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseKNNResult(raw)
}

// parseKNNResult decodes the RESP2 FT.SEARCH reply:
// [total, key1, fields1, key2, fields2, ...].
func parseKNNResult(raw []rueidis.RedisMessage) ([]db.KNNMatch, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	matches := make([]db.KNNMatch, 0, total)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		m := db.KNNMatch{Key: key}
		pairs := parseFieldPairs(fields)
		if distStr, ok := pairs["__distance"]; ok {
			if d, err := strconv.ParseFloat(distStr, 64); err == nil {
				m.Distance = d
			}
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// parseFieldPairs flattens a [name, value, name, value, ...] reply into a map.
func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	out := make(map[string]string, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		name, err := fields[i].ToString()
		if err != nil {
			continue
		}
		val, err := fields[i+1].ToString()
		if err != nil {
			continue
		}
		out[name] = val
	}
	return out
}

// VectorToBlob serializes a vector to the FLOAT32 little-endian binary string
// FT.SEARCH and HSET expect.
func VectorToBlob(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// BlobToVector deserializes a binary string back into a vector.
func BlobToVector(s string) []float32 {
	b := []byte(s)
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}

// isRedisErr checks if err is a Redis server error containing substr
// (case-insensitive).
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return containsIgnoreCase(re.Error(), substr)
}

func containsIgnoreCase(s, substr string) bool {
	ls, lsub := len(s), len(substr)
	if lsub > ls {
		return false
	}
	for i := 0; i <= ls-lsub; i++ {
		match := true
		for j := 0; j < lsub; j++ {
			sc, tc := s[i+j], substr[j]
			if sc >= 'A' && sc <= 'Z' {
				sc += 'a' - 'A'
			}
			if tc >= 'A' && tc <= 'Z' {
				tc += 'a' - 'A'
			}
			if sc != tc {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
