package dto

// PredictionRequest asks for a market-fit prediction for one vehicle in the
// dealer's region.
type PredictionRequest struct {
	Make      string  `json:"make" validate:"required"`
	Model     string  `json:"model" validate:"required"`
	Year      int     `json:"year" validate:"required,gte=1950,lte=2100"`
	PriceGBP  float64 `json:"price_gbp" validate:"required,gt=0"`
	Mileage   *int    `json:"mileage" validate:"omitempty,gte=0"`
	Condition string  `json:"condition"`
	Region    string  `json:"region"`
}
