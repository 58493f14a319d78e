// Package dataset decodes FROC evaluation datasets from JSON documents,
// optionally gzip or zstd compressed.
//
// A document lists samples. Each sample carries a probability map or ranked
// detections, and exactly one of a ground-truth mask or a ground-truth point
// list:
//
//	{"name": "lung-nodules",
//	 "samples": [
//	   {"id": "case-1",
//	    "probability_map": {"shape": [2, 2], "data": [0, 0.9, 0.1, 0]},
//	    "ground_truth_points": [[0, 1]]}]}
package dataset

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/fcalvet/froc/internal/froc"
)

// maxDocumentSize caps the decompressed size of a dataset document.
const maxDocumentSize = 1 << 30

// Compression identifies how a document is encoded on disk.
type Compression int

const (
	None Compression = iota
	Gzip
	Zstd
)

// CompressionFor picks the compression from a file extension.
func CompressionFor(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return Gzip
	case ".zst", ".zstd":
		return Zstd
	default:
		return None
	}
}

// MaskDoc is a dense row-major grid.
type MaskDoc struct {
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// Sample is one evaluated case.
type Sample struct {
	ID                string        `json:"id,omitempty"`
	ProbabilityMap    *MaskDoc      `json:"probability_map,omitempty"`
	RankedDetections  [][][]float64 `json:"ranked_detections,omitempty"`
	GroundTruthMask   *MaskDoc      `json:"ground_truth_mask,omitempty"`
	GroundTruthPoints *[][]float64  `json:"ground_truth_points,omitempty"`
}

// Dataset is a decoded document.
type Dataset struct {
	Name    string   `json:"name,omitempty"`
	Samples []Sample `json:"samples"`
}

// Decode parses an uncompressed JSON document.
func Decode(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := sonic.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if len(ds.Samples) == 0 {
		return nil, fmt.Errorf("%w: dataset has no samples", froc.ErrInvalidArgument)
	}
	return &ds, nil
}

// Read decodes a document from r.
func Read(r io.Reader, c Compression) (*Dataset, error) {
	switch c {
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip: failed to create reader: %w", err)
		}
		defer zr.Close()
		r = zr
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd: failed to create reader: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	data, err := io.ReadAll(io.LimitReader(r, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if len(data) > maxDocumentSize {
		return nil, fmt.Errorf("dataset exceeds %d bytes", maxDocumentSize)
	}
	return Decode(data)
}

// Load reads the document at path, choosing the compression from its
// extension.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ds, err := Read(f, CompressionFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if ds.Name == "" {
		ds.Name = nameFromPath(path)
	}
	return ds, nil
}

// nameFromPath strips the directory and the compression and .json
// extensions, so "data/cases.json.gz" becomes "cases".
func nameFromPath(path string) string {
	name := filepath.Base(path)
	if CompressionFor(name) != None {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return strings.TrimSuffix(name, ".json")
}

// Write encodes ds to w.
func Write(w io.Writer, ds *Dataset, c Compression) error {
	data, err := sonic.Marshal(ds)
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}

	switch c {
	case Gzip:
		zw := gzip.NewWriter(w)
		if _, err := zw.Write(data); err != nil {
			return fmt.Errorf("gzip: %w", err)
		}
		return zw.Close()
	case Zstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("zstd: failed to create writer: %w", err)
		}
		if _, err := io.Copy(zw, bytes.NewReader(data)); err != nil {
			zw.Close()
			return fmt.Errorf("zstd: %w", err)
		}
		return zw.Close()
	default:
		_, err := w.Write(data)
		return err
	}
}

// IDs returns one identifier per sample. Samples without an id are named by
// their index.
func (ds *Dataset) IDs() []string {
	ids := make([]string, len(ds.Samples))
	for i, s := range ds.Samples {
		if s.ID != "" {
			ids[i] = s.ID
		} else {
			ids[i] = strconv.Itoa(i)
		}
	}
	return ids
}

// Maps converts every probability map.
func (ds *Dataset) Maps() ([]*froc.Mask, error) {
	maps := make([]*froc.Mask, len(ds.Samples))
	for i, s := range ds.Samples {
		if s.ProbabilityMap == nil {
			return nil, fmt.Errorf("%w: sample %d has no probability map", froc.ErrInvalidArgument, i)
		}
		m, err := froc.NewMask(s.ProbabilityMap.Shape, s.ProbabilityMap.Data)
		if err != nil {
			return nil, fmt.Errorf("sample %d probability map: %w", i, err)
		}
		maps[i] = m
	}
	return maps, nil
}

// Ranked converts every ranked detection list. Entries are ordered from
// least to most confident; a sample without any has no detections.
func (ds *Dataset) Ranked() []froc.RankedDetections {
	out := make([]froc.RankedDetections, len(ds.Samples))
	for i, s := range ds.Samples {
		entries := make(froc.RankedDetections, len(s.RankedDetections))
		for j, e := range s.RankedDetections {
			entries[j] = toPointSet(e)
		}
		out[i] = entries
	}
	return out
}

// GroundTruths resolves the ground truth of every sample.
func (ds *Dataset) GroundTruths() ([]froc.GroundTruth, error) {
	out := make([]froc.GroundTruth, len(ds.Samples))
	for i, s := range ds.Samples {
		switch {
		case s.GroundTruthMask != nil && s.GroundTruthPoints != nil:
			return nil, fmt.Errorf("%w: sample %d has both a mask and points", froc.ErrInputType, i)
		case s.GroundTruthMask != nil:
			m, err := froc.NewMask(s.GroundTruthMask.Shape, s.GroundTruthMask.Data)
			if err != nil {
				return nil, fmt.Errorf("sample %d ground truth: %w", i, err)
			}
			out[i] = froc.MaskTruth(m)
		case s.GroundTruthPoints != nil:
			out[i] = froc.PointTruth(toPointSet(*s.GroundTruthPoints))
		default:
			return nil, fmt.Errorf("%w: sample %d has no ground truth", froc.ErrInputType, i)
		}
	}
	return out, nil
}

func toPointSet(coords [][]float64) froc.PointSet {
	ps := make(froc.PointSet, len(coords))
	for i, c := range coords {
		ps[i] = froc.Point(c)
	}
	return ps
}
