package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"client_id",
			"professional_id",
			"service_id",
			"date",
			"start_time",
			"end_time",
			"hours",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"client_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"professional_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"service_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  "^\\d{4}-\\d{2}-\\d{2}$",
			},

			"start_time": bson.M{
				"bsonType": "string",
				"pattern":  "^\\d{2}:\\d{2}$",
			},

			"end_time": bson.M{
				"bsonType": "string",
				"pattern":  "^\\d{2}:\\d{2}$",
			},

			"hours": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  24,
			},

			"total_price": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"accepted",
					"in_progress",
					"completed",
					"rejected",
					"cancelled",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
