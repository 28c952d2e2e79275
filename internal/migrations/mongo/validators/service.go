package validators

import "go.mongodb.org/mongo-driver/bson"

var ServiceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"professional_id",
			"category_id",
			"title",
			"description",
			"price_type",
			"location",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"professional_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"category_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"title": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"description": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 2000,
			},

			"price_type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"fixed",
					"hourly",
					"negotiable",
				},
			},

			"price": bson.M{
				"bsonType":         []string{"double", "int", "long", "decimal"},
				"exclusiveMinimum": true,
				"minimum":          0,
			},

			"hourly_rate": bson.M{
				"bsonType":         []string{"double", "int", "long", "decimal"},
				"exclusiveMinimum": true,
				"minimum":          0,
			},

			"location": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"is_active": bson.M{
				"bsonType": "bool",
			},

			"tags": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType":  "string",
					"minLength": 1,
					"maxLength": 40,
				},
			},

			"rating": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
				"maximum":  5,
			},

			"review_count": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
