package validators

import "go.mongodb.org/mongo-driver/bson"

var AvailabilityRuleValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"professional_id",
			"day_of_week",
			"is_available",
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

			"day_of_week": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  6,
			},

			"start_time": bson.M{
				"bsonType": "string",
				"pattern":  "^\\d{2}:\\d{2}$",
			},

			"end_time": bson.M{
				"bsonType": "string",
				"pattern":  "^\\d{2}:\\d{2}$",
			},

			"is_available": bson.M{
				"bsonType": "bool",
			},
		},
	},
}

var BlockedSlotValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"professional_id",
			"date",
			"start_time",
			"end_time",
			"reason",
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

			"booking_id": bson.M{
				"bsonType": "string",
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

			"reason": bson.M{
				"bsonType": "string",
				"enum": []string{
					"booking",
					"personal",
					"maintenance",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
