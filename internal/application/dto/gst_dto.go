package dto

// GSTAddress dirección principal registrada del contribuyente.
type GSTAddress struct {
	Floor          string `json:"floor"`
	BuildingNumber string `json:"buildingNumber"`
	Street         string `json:"street"`
	Location       string `json:"location"`
	State          string `json:"state"`
	Pincode        string `json:"pincode"`
	City           string `json:"city"`
}

// GSTDetailsResponse datos del contribuyente para prellenar el cliente.
type GSTDetailsResponse struct {
	GSTIN            string     `json:"gstin"`
	LegalName        string     `json:"legalName"`
	TradeName        string     `json:"tradeName"`
	PAN              string     `json:"pan"`
	DealerType       string     `json:"dealerType"`
	RegistrationDate string     `json:"registrationDate"`
	EntityType       string     `json:"entityType"`
	Business         string     `json:"business"`
	Status           string     `json:"status"`
	Address          GSTAddress `json:"address"`
}
