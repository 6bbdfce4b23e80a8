package loans

// RenewLoanPayload represents the request body for renewing a loan.
type RenewLoanPayload struct {
	RenewalDate string `json:"renewal_date" validate:"required,date"`
}

// ListLoansQuery represents the query parameters for the loan list views.
type ListLoansQuery struct {
	Limit  int `query:"limit" default:"10" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}
