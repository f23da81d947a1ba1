package dto

import (
	"pulsecrm/internal/domain/segment"
)

// --- Request DTOs ---

// CreateSegmentRequest is the request body for creating a segment.
// Rules are optional: when absent, the segment starts with a default tree
// (root AND group with one default condition).
type CreateSegmentRequest struct {
	Name        string             `json:"name" binding:"required"`
	Description string             `json:"description"`
	Rules       *segment.RuleGroup `json:"rules"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateSegmentRequest) ToEntity(cat *segment.Catalog) *segment.Segment {
	s := segment.NewSegment(cat, r.Name)
	s.Description = r.Description
	if r.Rules != nil {
		s.Rules = *r.Rules
	}
	return s
}

// UpdateSegmentRequest is the request body for updating a segment.
type UpdateSegmentRequest struct {
	Name        string             `json:"name" binding:"required"`
	Description string             `json:"description"`
	Rules       *segment.RuleGroup `json:"rules" binding:"required"`
	Version     int                `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateSegmentRequest) ApplyTo(s *segment.Segment) {
	s.Name = r.Name
	s.Description = r.Description
	s.Rules = *r.Rules
	s.Version = r.Version
}

// PreviewSegmentRequest evaluates an (unsaved) rule tree.
type PreviewSegmentRequest struct {
	Rules segment.RuleGroup `json:"rules" binding:"required"`
}

// --- Response DTOs ---

// SegmentResponse is the response body for a segment.
type SegmentResponse struct {
	BaseResponse
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Rules       segment.RuleGroup `json:"rules"`
}

// FromSegment creates response DTO from domain entity.
func FromSegment(s *segment.Segment) *SegmentResponse {
	return &SegmentResponse{
		BaseResponse: FromBaseEntity(s.BaseEntity),
		Name:         s.Name,
		Description:  s.Description,
		Rules:        s.Rules,
	}
}

// --- Field catalogue DTOs (for the rule editor UI) ---

// FieldOptionResponse is one select option.
type FieldOptionResponse struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FieldResponse describes one filterable field.
type FieldResponse struct {
	Key     string                `json:"key"`
	Label   string                `json:"label"`
	Type    string                `json:"type"`
	Group   string                `json:"group,omitempty"`
	Options []FieldOptionResponse `json:"options,omitempty"`
}

// FieldCatalogResponse is the full editor bootstrap payload: the field list
// plus valid operators per field type (first operator is the default).
type FieldCatalogResponse struct {
	Fields          []FieldResponse               `json:"fields"`
	OperatorsByType map[string][]segment.Operator `json:"operatorsByType"`
}

// FromCatalog builds the editor bootstrap payload.
func FromCatalog(cat *segment.Catalog) FieldCatalogResponse {
	fields := cat.Fields()
	resp := FieldCatalogResponse{
		Fields:          make([]FieldResponse, len(fields)),
		OperatorsByType: make(map[string][]segment.Operator, 5),
	}

	for i, f := range fields {
		fr := FieldResponse{
			Key:   f.Key,
			Label: f.Label,
			Type:  string(f.Type),
			Group: f.Group,
		}
		for _, opt := range f.Options {
			fr.Options = append(fr.Options, FieldOptionResponse{
				Value: opt.Value,
				Label: opt.Label,
			})
		}
		resp.Fields[i] = fr
	}

	for _, t := range []segment.FieldType{
		segment.TypeString, segment.TypeNumber, segment.TypeDate,
		segment.TypeSelect, segment.TypeArray,
	} {
		resp.OperatorsByType[string(t)] = segment.OperatorsForType(t)
	}

	return resp
}

// PreviewResponse reports match statistics for a rule tree.
type PreviewResponse struct {
	Total   int              `json:"total"`
	Matched int              `json:"matched"`
	Sample  []segment.Record `json:"sample"`
}

// FromPreview creates response from domain preview result.
func FromPreview(p segment.PreviewResult) PreviewResponse {
	return PreviewResponse{
		Total:   p.Total,
		Matched: p.Matched,
		Sample:  p.Sample,
	}
}
