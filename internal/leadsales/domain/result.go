package domain

// ContactUpdate carries the structured customer data the cortex extracted
// from the dialog. The Node bot core updates the CRM contact and lead from it.
type ContactUpdate struct {
	FullNameRaw string `json:"full_name_raw,omitempty"`
	Name        string `json:"name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	SecondName  string `json:"second_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
}

// IsZero reports whether no field is populated.
func (c ContactUpdate) IsZero() bool {
	return c == ContactUpdate{}
}

// CRM lead field keys this core is allowed to populate. Anything else the
// advisory model proposes is stripped by the hardening governor.
const (
	FieldName            = "NAME"
	FieldLastName        = "LAST_NAME"
	FieldSecondName      = "SECOND_NAME"
	FieldPhone           = "PHONE"
	FieldDeliveryAddress = "DELIVERY_ADDRESS"
)

// AllowedLeadFields is the full set of lead field keys that may reach the CRM.
var AllowedLeadFields = map[string]struct{}{
	FieldName:            {},
	FieldLastName:        {},
	FieldSecondName:      {},
	FieldPhone:           {},
	FieldDeliveryAddress: {},
}

// QualificationResult is the full decision for one conversation turn. It is
// created fresh each turn (by the fast path or the advisory model) and then
// amended by the offer canonicalizer, the policy engine and the hardening
// governor, in that order.
type QualificationResult struct {
	Action                string         `json:"action"`
	Stage                 FunnelStage    `json:"stage"`
	Reply                 string         `json:"reply"`
	Intent                Intent         `json:"intent,omitempty"`
	Confidence            *float64       `json:"confidence,omitempty"`
	AmbiguityReason       string         `json:"ambiguity_reason,omitempty"`
	RequiresClarification bool           `json:"requires_clarification"`
	OEMs                  []string       `json:"oems"`
	UpdateLeadFields      map[string]any `json:"update_lead_fields"`
	ProductRows           []any          `json:"product_rows"`
	ProductPicks          []any          `json:"product_picks"`
	ClientName            string         `json:"client_name,omitempty"`
	NeedOperator          bool           `json:"need_operator"`
	Offers                []Offer        `json:"offers"`
	ChosenOfferID         OfferChoice    `json:"chosen_offer_id"`
	ContactUpdate         *ContactUpdate `json:"contact_update,omitempty"`
	Meta                  map[string]any `json:"meta"`
	Debug                 map[string]any `json:"debug"`
}

// NewResult returns a result with safe defaults and initialized collections.
func NewResult() QualificationResult {
	return QualificationResult{
		Action:           ActionReply,
		Stage:            StageNew,
		OEMs:             []string{},
		UpdateLeadFields: map[string]any{},
		ProductRows:      []any{},
		ProductPicks:     []any{},
		Offers:           []Offer{},
		ChosenOfferID:    NoChoice(),
		Meta:             map[string]any{},
		Debug:            map[string]any{},
	}
}

// EnsureCollections replaces nil maps and slices with empty ones so later
// stages can amend the result without nil checks.
func (r *QualificationResult) EnsureCollections() {
	if r.OEMs == nil {
		r.OEMs = []string{}
	}
	if r.UpdateLeadFields == nil {
		r.UpdateLeadFields = map[string]any{}
	}
	if r.ProductRows == nil {
		r.ProductRows = []any{}
	}
	if r.ProductPicks == nil {
		r.ProductPicks = []any{}
	}
	if r.Offers == nil {
		r.Offers = []Offer{}
	}
	if r.Meta == nil {
		r.Meta = map[string]any{}
	}
	if r.Debug == nil {
		r.Debug = map[string]any{}
	}
}

// SetDebugDefault records a debug value only when the key is not present,
// so later stages never overwrite earlier diagnostic notes.
func (r *QualificationResult) SetDebugDefault(key string, value any) {
	if r.Debug == nil {
		r.Debug = map[string]any{}
	}
	if _, exists := r.Debug[key]; !exists {
		r.Debug[key] = value
	}
}

// MergeDebug copies every entry of patch into the debug map.
func (r *QualificationResult) MergeDebug(patch map[string]any) {
	if len(patch) == 0 {
		return
	}
	if r.Debug == nil {
		r.Debug = map[string]any{}
	}
	for k, v := range patch {
		r.Debug[k] = v
	}
}

// ConfidenceAtLeast raises the confidence floor, treating nil as zero.
func (r *QualificationResult) ConfidenceAtLeast(floor float64) {
	current := 0.0
	if r.Confidence != nil {
		current = *r.Confidence
	}
	if floor > current {
		current = floor
	}
	r.Confidence = &current
}
