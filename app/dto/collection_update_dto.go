package dto

// CollectionUpdateDTO is a collection note
type CollectionUpdateDTO struct {
	ID              uint   `json:"id"`
	DebtorID        uint   `json:"debtor_id"`
	DebtorName      string `json:"debtor_name,omitempty"`
	AgentID         *uint  `json:"agent_id,omitempty"`
	UpdateDate      string `json:"update_date"`
	CollectionNotes string `json:"collection_notes"`
}

// CreateCollectionUpdateRequest adds a collection note to a debtor
type CreateCollectionUpdateRequest struct {
	CollectionNotes string `json:"collection_notes" validate:"required,min=1,max=5000"`
}

// ListCollectionUpdatesRequest filters the collection-update report
type ListCollectionUpdatesRequest struct {
	DebtorID *uint  `query:"debtor_id"`
	AgentID  *uint  `query:"agent_id"`
	Period   string `query:"period" validate:"omitempty,oneof=week month this_week this_month"`
	Page     uint   `query:"page"`
	PageSize uint   `query:"page_size"`
}

// ListCollectionUpdatesResponse is a page of collection updates
type ListCollectionUpdatesResponse struct {
	Updates    []CollectionUpdateDTO `json:"updates"`
	Pagination Pagination            `json:"pagination"`
}
