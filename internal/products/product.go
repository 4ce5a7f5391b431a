package products

// Review is one row of the review dataset. Reviews are created by a load and
// never mutated afterwards.
type Review struct {
	ID                     int64  `json:"id"`
	ProductID              string `json:"product_id" validate:"required"`
	UserID                 string `json:"user_id"`
	ProfileName            string `json:"profile_name"`
	HelpfulnessNumerator   int    `json:"helpfulness_numerator" validate:"gte=0"`
	HelpfulnessDenominator int    `json:"helpfulness_denominator" validate:"gte=0"`
	Score                  int    `json:"score" validate:"gte=0,lte=5"`
	Time                   int64  `json:"time"`
	Summary                string `json:"summary"`
	Text                   string `json:"text"`
}

// Product groups the reviews of one product id in the order they were read.
// NumberOfReviews always equals len(Reviews).
type Product struct {
	ProductID       string   `json:"product_id"`
	Reviews         []Review `json:"reviews"`
	NumberOfReviews int      `json:"number_of_reviews"`
}

type ProductCount struct {
	ProductID       string `json:"product_id"`
	NumberOfReviews int    `json:"number_of_reviews"`
}
