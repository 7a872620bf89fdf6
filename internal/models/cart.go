package models

// ServicePackage is a sellable, catalog-level service offering derived from
// the live provider feed (or from the static default catalog).
type ServicePackage struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	WarrantyMonths int     `json:"warranty_months"`
	Description    string  `json:"description,omitempty"`
	// IsCustom marks a package whose price is not fixed: no provider has
	// quoted it, or the derived price is zero.
	IsCustom bool `json:"is_custom"`
}

// CartItem is one cart line. A cart holds at most one line per service.
type CartItem struct {
	ServiceID string `json:"service_id"`
	Quantity  int    `json:"quantity"`
}

// ProviderOffering is one vendor's own price/availability declaration for a
// service type. Active defaults to true when absent from the feed.
type ProviderOffering struct {
	ProviderID  string   `json:"provider_id"`
	ServiceType string   `json:"service_type"`
	Price       *float64 `json:"price,omitempty"`
	Description string   `json:"description,omitempty"`
	ETAMinutes  int      `json:"eta_minutes,omitempty"`
	Active      *bool    `json:"active,omitempty"`
}

// IsActive reports whether the offering participates in matching and
// aggregation. A missing active flag counts as active.
func (o ProviderOffering) IsActive() bool {
	return o.Active == nil || *o.Active
}

// ServiceProvider is one vendor on the roster.
type ServiceProvider struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	City              string             `json:"city"`
	DistanceKm        *float64           `json:"distance_km,omitempty"`
	ServiceCategories []string           `json:"service_categories"`
	Offerings         []ProviderOffering `json:"offerings"`
}

// Coupon is a flat, non-negative discount.
type Coupon struct {
	Code      string  `json:"code"`
	Label     string  `json:"label"`
	AmountOff float64 `json:"amount_off"`
}

type Address struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Line1   string `json:"line1"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

type TimeSlot struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// CarDetails captures the vehicle a service request is for. Required before
// submission.
type CarDetails struct {
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	Fuel         string `json:"fuel"`
	Registration string `json:"registration,omitempty"`
	City         string `json:"city,omitempty"`
}

// Complete reports whether the mandatory vehicle fields are filled in.
func (c CarDetails) Complete() bool {
	return c.Make != "" && c.Model != "" && c.Year > 0 && c.Fuel != ""
}

// CartState is the aggregate root owned by one shopper session. It is
// persisted in full after every mutation.
type CartState struct {
	Items                []CartItem  `json:"items"`
	AddressID            string      `json:"address_id"`
	SlotID               string      `json:"slot_id"`
	CouponCode           string      `json:"coupon_code,omitempty"`
	CandidateProviderIDs []string    `json:"candidate_provider_ids"`
	Note                 string      `json:"note"`
	CarDetails           *CarDetails `json:"car_details,omitempty"`
	Addresses            []Address   `json:"addresses"`
}

// Item returns the cart line for the given service id, if present.
func (s *CartState) Item(serviceID string) (*CartItem, bool) {
	for i := range s.Items {
		if s.Items[i].ServiceID == serviceID {
			return &s.Items[i], true
		}
	}
	return nil, false
}

// ServiceIDs returns the selected service ids in cart order.
func (s *CartState) ServiceIDs() []string {
	ids := make([]string, len(s.Items))
	for i, item := range s.Items {
		ids[i] = item.ServiceID
	}
	return ids
}

// Clone returns a deep copy, so stored snapshots never alias live state.
func (s *CartState) Clone() *CartState {
	out := &CartState{
		AddressID:  s.AddressID,
		SlotID:     s.SlotID,
		CouponCode: s.CouponCode,
		Note:       s.Note,
	}
	out.Items = append([]CartItem(nil), s.Items...)
	out.CandidateProviderIDs = append([]string(nil), s.CandidateProviderIDs...)
	out.Addresses = append([]Address(nil), s.Addresses...)
	if s.CarDetails != nil {
		cd := *s.CarDetails
		out.CarDetails = &cd
	}
	return out
}

// PrefillRecord is the one-shot external signal that pre-populates a cart
// before the shopper starts interacting with it. Consumed at most once.
type PrefillRecord struct {
	Items      []CartItem  `json:"items"`
	CarDetails *CarDetails `json:"car_details,omitempty"`
}
