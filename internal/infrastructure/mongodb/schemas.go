package mongodb

import "github.com/oksasatya/tour-booking-api/pkg/apifeatures"

// Query-string allow-lists per collection, keyed by stored field name.
var (
	tourSchema = apifeatures.Schema{
		"name":            {Kind: apifeatures.String},
		"slug":            {Kind: apifeatures.String},
		"duration":        {Kind: apifeatures.Number},
		"maxGroupSize":    {Kind: apifeatures.Number},
		"difficulty":      {Kind: apifeatures.String},
		"ratingsAverage":  {Kind: apifeatures.Number},
		"ratingsQuantity": {Kind: apifeatures.Number},
		"price":           {Kind: apifeatures.Number},
		"priceDiscount":   {Kind: apifeatures.Number},
		"summary":         {Kind: apifeatures.String},
		"description":     {Kind: apifeatures.String},
		"imageCover":      {Kind: apifeatures.String},
		"images":          {Kind: apifeatures.String},
		"startDates":      {Kind: apifeatures.Date},
		"startLocation":   {Kind: apifeatures.String},
		"locations":       {Kind: apifeatures.String},
		"guides":          {Kind: apifeatures.ObjectID},
		"createdAt":       {Kind: apifeatures.Date},
	}

	userSchema = apifeatures.Schema{
		"name":              {Kind: apifeatures.String},
		"email":             {Kind: apifeatures.String},
		"photo":             {Kind: apifeatures.String},
		"role":              {Kind: apifeatures.String},
		"createdAt":         {Kind: apifeatures.Date},
		"password":          {Kind: apifeatures.String, Hidden: true},
		"passwordChangedAt": {Kind: apifeatures.Date, Hidden: true},
		"active":            {Kind: apifeatures.Bool, Hidden: true},
	}

	reviewSchema = apifeatures.Schema{
		"review":    {Kind: apifeatures.String},
		"rating":    {Kind: apifeatures.Number},
		"tour":      {Kind: apifeatures.ObjectID},
		"user":      {Kind: apifeatures.ObjectID},
		"createdAt": {Kind: apifeatures.Date},
	}

	bookingSchema = apifeatures.Schema{
		"tour":      {Kind: apifeatures.ObjectID},
		"user":      {Kind: apifeatures.ObjectID},
		"price":     {Kind: apifeatures.Number},
		"paid":      {Kind: apifeatures.Bool},
		"sessionId": {Kind: apifeatures.String},
		"createdAt": {Kind: apifeatures.Date},
	}
)
