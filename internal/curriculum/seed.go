package curriculum

func init() {
	catalog = []Lesson{
		{
			ID:          "unit-1",
			Title:       "Basic Personal Information",
			Description: "Aprende a presentarte, decir tu edad y de dónde eres.",
			Level:       LevelA1,
			Topics:      []string{"Introductions", "Countries & Nationalities", "Age & Numbers"},
		},
		{
			ID:          "unit-2",
			Title:       "Daily Routine",
			Description: "Describe tu día a día y los horarios.",
			Level:       LevelA1,
			Topics:      []string{"Morning Routine", "Time", "Verbs of Frequency"},
		},
		{
			ID:          "unit-3",
			Title:       "Likes & Dislikes",
			Description: "Habla sobre lo que te gusta y lo que no.",
			Level:       LevelA1,
			Topics:      []string{"Love/Like/Hate", "Hobbies", "Food Preferences"},
		},
		{
			ID:          "unit-4",
			Title:       "Shopping List",
			Description: "Vocabulario para hacer la compra y pedir precios.",
			Level:       LevelA1,
			Topics:      []string{"Groceries", "Numbers & Prices", "At the Store"},
		},
		{
			ID:          "unit-a2-1",
			Title:       "Travel & Directions",
			Description: "Pide indicaciones y organiza un viaje.",
			Level:       LevelA2,
			Topics:      []string{"Directions", "Transport", "Accommodation"},
		},
		{
			ID:          "unit-b1-1",
			Title:       "Work & Career",
			Description: "Prepárate para entrevistas y habla de tu trabajo.",
			Level:       LevelB1,
			Topics:      []string{"Interviews", "Resume", "Work Environment"},
		},
		{
			ID:          "unit-c1-1",
			Title:       "Abstract Ideas",
			Description: "Debate ideas complejas con matices.",
			Level:       LevelC1,
			Topics:      []string{"Debate", "Philosophy", "Nuance"},
		},
	}
}
