package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// CoerceProject parses persisted project JSON defensively. Older project
// files may miss fields introduced later (order, color, isHidden) or carry
// numbers as strings; every field is coerced to a safe default instead of
// failing the load. Only completely unparseable JSON returns an error.
func CoerceProject(data []byte) (*Project, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	p := &Project{
		ID:        asString(raw["id"]),
		Name:      asString(raw["name"]),
		CreatedAt: int64(asFloat(raw["createdAt"], 0)),
		UpdatedAt: int64(asFloat(raw["updatedAt"], 0)),
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Name == "" {
		p.Name = "Untitled Project"
	}

	if af, ok := raw["audioFile"].(map[string]any); ok {
		p.AudioFile = &AudioFile{
			ID:        asString(af["id"]),
			Name:      asString(af["name"]),
			SourceRef: asString(af["sourceRef"]),
			Duration:  asFloat(af["duration"], 0),
		}
	}

	rawPages, _ := raw["pages"].([]any)
	p.Pages = make([]Page, 0, len(rawPages))
	for pageIdx, rp := range rawPages {
		pm, ok := rp.(map[string]any)
		if !ok {
			continue
		}
		p.Pages = append(p.Pages, coercePage(pm, pageIdx))
	}
	return p, nil
}

func coercePage(pm map[string]any, pageIdx int) Page {
	page := Page{
		ID:      asString(pm["id"]),
		AssetID: asString(pm["assetId"]),
		Data:    asString(pm["data"]),
		IsPDF:   asBool(pm["isPDF"]),
	}
	if page.ID == "" {
		page.ID = uuid.New().String()
	}

	rawSegs, _ := pm["segments"].([]any)
	page.Segments = make([]Segment, 0, len(rawSegs))
	for i, rs := range rawSegs {
		sm, ok := rs.(map[string]any)
		if !ok {
			continue
		}
		page.Segments = append(page.Segments, coerceSegment(sm, pageIdx, i))
	}
	return page
}

func coerceSegment(sm map[string]any, pageIdx, idx int) Segment {
	seg := Segment{
		ID:        asString(sm["id"]),
		PageIndex: int(asFloat(sm["pageIndex"], float64(pageIdx))),
		Label:     asString(sm["label"]),
		StartTime: asFloat(sm["startTime"], 0),
		EndTime:   asFloat(sm["endTime"], 0),
		IsHidden:  asBool(sm["isHidden"]),
		Order:     int(asFloat(sm["order"], float64(idx))),
		Color:     asString(sm["color"]),
		Notes:     asString(sm["notes"]),
	}
	if seg.ID == "" {
		seg.ID = uuid.New().String()
	}
	if seg.Label == "" {
		seg.Label = DefaultLabel(idx + 1)
	}
	if rm, ok := sm["region"].(map[string]any); ok {
		seg.Region = Region{
			X:      asFloat(rm["x"], 0),
			Y:      asFloat(rm["y"], 0),
			Width:  asFloat(rm["width"], MinRegionPercent),
			Height: asFloat(rm["height"], MinRegionPercent),
		}
	}
	seg.Region = seg.Region.Clamp(MinRegionPercent)
	if seg.StartTime < 0 {
		seg.StartTime = 0
	}
	if seg.EndTime < seg.StartTime+MinSegmentDuration {
		seg.EndTime = seg.StartTime + MinSegmentDuration
	}
	return seg
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	}
	return false
}

func asFloat(v any, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err == nil {
			return f
		}
	case string:
		var f float64
		if _, err := jsonNumber(n, &f); err == nil {
			return f
		}
	}
	return def
}

func jsonNumber(s string, out *float64) (bool, error) {
	err := json.Unmarshal([]byte(s), out)
	return err == nil, err
}
