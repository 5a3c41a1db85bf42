package models

// ParentLinkRequest adds ParentID to the end of a person's parent list.
type ParentLinkRequest struct {
	ParentID string `json:"parent_id"`
}

// Validate checks ParentLinkRequest fields.
func (r *ParentLinkRequest) Validate() error {
	if r.ParentID == "" {
		return ErrMissingParent
	}

	if len(r.ParentID) > MaxIDLength {
		return ErrFieldTooLong("parent_id", MaxIDLength)
	}

	return nil
}

// PartnerLinkRequest records a symmetric partnership.
type PartnerLinkRequest struct {
	PartnerID string `json:"partner_id"`
}

// Validate checks PartnerLinkRequest fields.
func (r *PartnerLinkRequest) Validate() error {
	if r.PartnerID == "" {
		return ErrMissingPartner
	}

	if len(r.PartnerID) > MaxIDLength {
		return ErrFieldTooLong("partner_id", MaxIDLength)
	}

	return nil
}
