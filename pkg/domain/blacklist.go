package domain

// BlacklistEntry is a supplier known to be high risk.
type BlacklistEntry struct {
	SupplierID  string  `json:"supplier_id"`
	CompanyName string  `json:"company_name"`
	RiskScore   float64 `json:"risk_score"`
	Note        string  `json:"note"`
}
