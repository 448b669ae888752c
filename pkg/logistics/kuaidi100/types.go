package kuaidi100

// TrackRequest identifies one shipment to query.
type TrackRequest struct {
	// CarrierCode is the Kuaidi100 carrier code, e.g. "shunfeng"
	CarrierCode string `json:"com"`

	// TrackingNo is the carrier's tracking number
	TrackingNo string `json:"num"`

	// Phone is the receiver's phone number, required by some carriers
	Phone string `json:"phone,omitempty"`
}

// rawResponse mirrors the upstream query payload.
type rawResponse struct {
	Message string     `json:"message"`
	State   string     `json:"state"`
	Status  string     `json:"status"`
	Com     string     `json:"com"`
	Nu      string     `json:"nu"`
	Data    []rawEvent `json:"data"`
}

type rawEvent struct {
	Time    string `json:"time"`
	Context string `json:"context"`
}

// TrackEvent is one scan point along the route.
type TrackEvent struct {
	Time        string `json:"time"`
	Description string `json:"description"`
}

// TrackResult is a normalized tracking history, oldest event first.
type TrackResult struct {
	CarrierCode string       `json:"carrier_code"`
	TrackingNo  string       `json:"tracking_no"`
	State       string       `json:"state"`
	Events      []TrackEvent `json:"events"`
}

// Carrier is one supported logistics company.
type Carrier struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// stateNames maps the upstream numeric state to a readable label.
var stateNames = map[string]string{
	"0": "awaiting_pickup",
	"1": "in_transit",
	"2": "out_for_delivery",
	"3": "delivered",
	"4": "refused",
	"5": "problem_shipment",
	"6": "return_in_transit",
	"7": "returned",
}

// carriers is the supported carrier set, in display order.
var carriers = []Carrier{
	{Code: "shunfeng", Name: "SF Express"},
	{Code: "yuantong", Name: "YTO Express"},
	{Code: "zhongtong", Name: "ZTO Express"},
	{Code: "shentong", Name: "STO Express"},
	{Code: "yunda", Name: "Yunda Express"},
	{Code: "jtexpress", Name: "J&T Express"},
	{Code: "ems", Name: "China Post EMS"},
	{Code: "jd", Name: "JD Logistics"},
	{Code: "youzhengguonei", Name: "China Post"},
	{Code: "debangkuaidi", Name: "Deppon Express"},
}

// Carriers returns the supported carrier list.
func Carriers() []Carrier {
	out := make([]Carrier, len(carriers))
	copy(out, carriers)
	return out
}

// IsSupportedCarrier reports whether code is in the supported set.
func IsSupportedCarrier(code string) bool {
	for _, c := range carriers {
		if c.Code == code {
			return true
		}
	}
	return false
}
