package blast

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/andrew-torda/homologs/pkg/hits"
)

// xmlHit is the part of a <Hit> element we use. Everything else in the
// search output is skipped by the decoder.
type xmlHit struct {
	ID   string   `xml:"Hit_id"`
	Hsps []xmlHsp `xml:"Hit_hsps>Hsp"`
}

type xmlHsp struct {
	BitScore string `xml:"Hsp_bit-score"`
	HSeq     string `xml:"Hsp_hseq"`
}

// toHit checks one decoded hit. Only the first HSP counts.
func (x *xmlHit) toHit() (hits.Hit, error) {
	id := strings.TrimSpace(x.ID)
	if id == "" {
		return hits.Hit{}, fmt.Errorf("%w: no Hit_id", ErrBadHit)
	}
	if len(x.Hsps) == 0 {
		return hits.Hit{}, fmt.Errorf("%w: %s has no Hsp", ErrBadHit, id)
	}
	hsp := x.Hsps[0]
	score, err := strconv.ParseFloat(strings.TrimSpace(hsp.BitScore), 64)
	if err != nil {
		return hits.Hit{}, fmt.Errorf("%w: %s bit score: %w", ErrBadHit, id, err)
	}
	hseq := strings.TrimSpace(hsp.HSeq)
	if hseq == "" {
		return hits.Hit{}, fmt.Errorf("%w: %s has empty Hsp_hseq", ErrBadHit, id)
	}
	return hits.Hit{ID: id, Score: score, Seq: hseq}, nil
}

// Parse reads search output in XML form and returns the hits in the
// order they appear. A hit that cannot be used goes into the error slice
// and the rest are still returned. The final error is for a document
// that is empty or broken. When it is set no hits are returned, since a
// document cut short says nothing about which hits were lost.
func Parse(r io.Reader) ([]hits.Hit, []error, error) {
	var (
		found   []hits.Hit
		hitErrs []error
		sawRoot bool
	)
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, hitErrs, fmt.Errorf("reading search output: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawRoot = true
		if se.Name.Local != "Hit" {
			continue
		}
		var x xmlHit
		if err := dec.DecodeElement(&x, &se); err != nil {
			return nil, hitErrs, fmt.Errorf("reading search output: %w", err)
		}
		h, err := x.toHit()
		if err != nil {
			hitErrs = append(hitErrs, err)
			continue
		}
		found = append(found, h)
	}
	if !sawRoot {
		return nil, hitErrs, ErrNoResult
	}
	return found, hitErrs, nil
}
