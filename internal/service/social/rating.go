package social

import (
	"github.com/shopspring/decimal"

	"github.com/jwalitptl/salon-api/internal/model"
)

// AverageRating recomputes a post's rating summary from its full rating set.
// The mean is rounded half away from zero to one decimal place.
func AverageRating(ratings []model.Rating) model.PostRating {
	if len(ratings) == 0 {
		return model.PostRating{AverageRating: decimal.Zero}
	}

	sum := decimal.Zero
	for _, r := range ratings {
		sum = sum.Add(decimal.NewFromInt(int64(r.Rating)))
	}

	return model.PostRating{
		AverageRating: sum.Div(decimal.NewFromInt(int64(len(ratings)))).Round(1),
		TotalRatings:  len(ratings),
	}
}
