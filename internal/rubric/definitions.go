package rubric

// BestPresenter and BestThesis are the two fixed grading rubrics. Weights sum
// to 100 in both. These are configuration data, never mutated at runtime.

var BestPresenter = []Item{
	{
		ID:          "preparedness",
		Name:        "Preparedness",
		Weight:      40,
		Description: "Student is completely prepared and uses language easy to understand.",
		Levels: []Level{
			{Points: "35-40", Description: "Excellent: Fully prepared, exceptionally clear.", Score: 40},
			{Points: "30-34", Description: "Very Good: Well-prepared, very clear.", Score: 34},
			{Points: "25-29", Description: "Good: Prepared, mostly clear.", Score: 29},
			{Points: "20-24", Description: "Fair: Somewhat prepared, needs more clarity.", Score: 24},
			{Points: "<20", Description: "Poor: Unprepared and unclear.", Score: 19},
		},
	},
	{
		ID:          "speaks_clearly",
		Name:        "Speaks Clearly",
		Weight:      30,
		Description: "Speaks clearly and distinctly all the time and mispronounces no words.",
		Levels: []Level{
			{Points: "26-30", Description: "Excellent: Flawless pronunciation and clarity.", Score: 30},
			{Points: "21-25", Description: "Very Good: Clear speech with minor mispronunciations.", Score: 25},
			{Points: "16-20", Description: "Good: Generally clear but some words are unclear.", Score: 20},
			{Points: "11-15", Description: "Fair: Often mumbles or mispronounces words.", Score: 15},
			{Points: "<11", Description: "Poor: Speech is very difficult to understand.", Score: 10},
		},
	},
	{
		ID:          "audience_rapport",
		Name:        "Audience Rapport",
		Weight:      20,
		Description: "Looks relaxed and confident. Establishes rapport with the audience during demonstration.",
		Levels: []Level{
			{Points: "18-20", Description: "Excellent: Strong connection with audience, very confident.", Score: 20},
			{Points: "15-17", Description: "Very Good: Good rapport, confident.", Score: 17},
			{Points: "12-14", Description: "Good: Makes some connection, appears somewhat confident.", Score: 14},
			{Points: "9-11", Description: "Fair: Little connection, appears nervous.", Score: 11},
			{Points: "<9", Description: "Poor: No rapport, very nervous.", Score: 8},
		},
	},
	{
		ID:          "stays_on_topic",
		Name:        "Stays on Topic",
		Weight:      10,
		Description: "Stays on topic all of the time.",
		Levels: []Level{
			{Points: "9-10", Description: "Excellent: Always focused on the topic.", Score: 10},
			{Points: "7-8", Description: "Very Good: Mostly stays on topic.", Score: 8},
			{Points: "5-6", Description: "Good: Some deviation from the topic.", Score: 6},
			{Points: "3-4", Description: "Fair: Often strays from the topic.", Score: 4},
			{Points: "<3", Description: "Poor: Does not address the topic.", Score: 2},
		},
	},
}

var BestThesis = []Item{
	{
		ID:          "organization",
		Name:        "Organization",
		Weight:      35,
		Description: "Information is very organized with well-constructed paragraphs and discussions.",
		Levels: []Level{
			{Points: "30-35", Description: "Excellent: Superbly organized, flows logically.", Score: 35},
			{Points: "25-29", Description: "Very Good: Well-organized, easy to follow.", Score: 29},
			{Points: "20-24", Description: "Good: Organized, but could be clearer.", Score: 24},
			{Points: "15-19", Description: "Fair: Some organization is apparent, but confusing.", Score: 19},
			{Points: "<15", Description: "Poor: Disorganized and hard to follow.", Score: 14},
		},
	},
	{
		ID:          "quality_of_info",
		Name:        "Quality of Information",
		Weight:      30,
		Description: "Information clearly relates to the main topic. It includes several supporting details and/or examples.",
		Levels: []Level{
			{Points: "26-30", Description: "Excellent: Information is rich, detailed, and highly relevant.", Score: 30},
			{Points: "21-25", Description: "Very Good: Information is relevant with good supporting details.", Score: 25},
			{Points: "16-20", Description: "Good: Information is relevant but lacks detail.", Score: 20},
			{Points: "11-15", Description: "Fair: Information is somewhat relevant, but superficial.", Score: 15},
			{Points: "<11", Description: "Poor: Information is irrelevant or inaccurate.", Score: 10},
		},
	},
	{
		ID:          "diagrams",
		Name:        "Diagrams & Illustration",
		Weight:      20,
		Description: "Diagrams and illustrations are neat, accurate and add to the reader's understanding of the topic.",
		Levels: []Level{
			{Points: "18-20", Description: "Excellent: Illustrations greatly enhance understanding.", Score: 20},
			{Points: "15-17", Description: "Very Good: Illustrations are accurate and helpful.", Score: 17},
			{Points: "12-14", Description: "Good: Illustrations are present and mostly accurate.", Score: 14},
			{Points: "9-11", Description: "Fair: Illustrations are present but not clear or helpful.", Score: 11},
			{Points: "<9", Description: "Poor: Illustrations are missing or inaccurate.", Score: 8},
		},
	},
	{
		ID:          "analysis",
		Name:        "Analysis",
		Weight:      15,
		Description: "The relationship between the variables is discussed and trends/patterns logically analyzed. Predictions are made.",
		Levels: []Level{
			{Points: "13-15", Description: "Excellent: Insightful analysis and logical predictions.", Score: 15},
			{Points: "10-12", Description: "Very Good: Good analysis of trends.", Score: 12},
			{Points: "7-9", Description: "Good: Basic analysis is present.", Score: 9},
			{Points: "4-6", Description: "Fair: Analysis is weak or flawed.", Score: 6},
			{Points: "<4", Description: "Poor: No analysis is present.", Score: 3},
		},
	},
}
