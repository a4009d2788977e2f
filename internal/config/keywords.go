package config

// defaultKeywords is the relevance pre-filter list: ethnic communities plus
// cultural heritage and practice. Case-insensitive substring matching.
var defaultKeywords = []string{
	// Cultural heritage & preservation
	"cultural resource", "cultural heritage", "cultural practice", "cultural property",
	"cultural tradition", "cultural identity", "intangible heritage",
	"historic preservation", "heritage", "monument", "museum", "memorial",
	"archaeological", "sacred site", "burial ground", "cemetery", "historic site",
	"NAGPRA", "NHPA", "Section 106", "National Register", "historic district",
	"Antiquities Act", "historic landmark", "World Heritage",
	// Indigenous / Tribal
	"tribal", "indigenous", "Native American", "Alaska Native", "Native Hawaiian",
	"treaty", "sovereignty", "reservation", "BIA", "Indian Affairs",
	"tribal consultation", "tribal land", "First Nations", "aboriginal",
	// African-descendant
	"African American", "Black community", "Black history", "civil rights",
	"racial justice", "racial equity", "reparations", "Juneteenth",
	"historically Black", "HBCU", "African diaspora", "Afro-",
	// Latiné / Hispanic
	"Latino", "Latina", "Latiné", "Latinx", "Hispanic", "Chicano", "Chicana",
	"farmworker", "bracero", "Spanish-speaking", "Latin American",
	// Asian American / Pacific Islander
	"Asian American", "Pacific Islander", "AAPI", "AANHPI",
	"Chinese American", "Japanese American", "Korean American",
	"Filipino", "Vietnamese", "South Asian", "Southeast Asian", "Polynesian",
	// Other ethnic / identity communities
	"LGBTQ", "disability", "women", "Muslim", "Jewish", "Sikh", "Hindu",
	"Arab American", "Middle Eastern", "immigrant community", "refugee community",
	// Civil rights & equity
	"DEI", "environmental justice", "Title VI", "discrimination", "equity",
	"hate crime", "civil liberties", "equal protection", "voting rights",
	// Immigration
	"immigration", "refugee", "asylum", "deportation", "TPS", "visa", "ICE", "DACA",
	"naturalization", "USCIS", "border", "migrant",
	// Environment & land
	"climate change", "EPA", "NEPA", "environmental review", "conservation",
	"endangered species", "public lands", "national park", "wilderness",
	"clean water", "clean air", "environmental protection",
	// Arts, education, cultural institutions
	"education", "NEA", "NEH", "Smithsonian", "library", "arts funding",
	"public broadcasting", "CPB", "PBS", "NPR", "IMLS",
	"arts community", "cultural institution", "humanities", "folk art",
	"language preservation", "oral history", "traditional knowledge",
	// Cultural life
	"foodways", "landways", "folk arts", "cultural arts", "performing arts",
	"parade", "celebration", "festival", "ceremony", "cultural event",
	"cultural programming", "cultural center", "community center",
	// Education & knowledge institutions
	"school", "university", "college", "archive",
	"curriculum", "Title I", "Title IX", "student", "scholarship",
	"tribal college", "community college", "head start",
}

// defaultCourtQueries drive the CourtListener opinion search.
var defaultCourtQueries = []string{
	"cultural resources historic preservation",
	"tribal sovereignty sacred sites NAGPRA",
	"national monument executive order",
	"environmental justice civil rights Title VI",
	"immigration deportation asylum TPS DACA",
	"NEA NEH arts funding Smithsonian",
	"treaty rights indigenous",
}

// defaultNewsQueries drive the NewsAPI article search.
var defaultNewsQueries = []string{
	`"cultural resources" OR "historic preservation" OR "national monument"`,
	`tribal sovereignty OR "sacred sites" OR NAGPRA`,
	`"environmental justice" OR "civil rights" executive order`,
	`NEA OR NEH OR Smithsonian funding cuts`,
	`immigration policy deportation "cultural impact"`,
}
