package questiongen

// Payload is the input for one question generation job.
type Payload struct {
	Query string `json:"query" validate:"required"`
}

// mcqOutput is the raw shape of the MCQ generation step before transform.
type mcqOutput struct {
	Question      string     `json:"question"`
	Options       mcqOptions `json:"options"`
	CorrectAnswer string     `json:"correct_answer"`
	Explanation   string     `json:"explanation"`
}

// mcqOptions is the fixed four-key option mapping the LLM produces.
type mcqOptions struct {
	A string `json:"A"`
	B string `json:"B"`
	C string `json:"C"`
	D string `json:"D"`
}

// metadataOutput is the raw shape of the metadata extraction step.
type metadataOutput struct {
	Subject    string   `json:"subject"`
	Difficulty string   `json:"difficulty"`
	Tags       []string `json:"tags"`
}

// Option is one answer choice in the target document format.
type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// QuestionDocument is the assembled record in the downstream database
// shape. Subject holds the external subject identifier; it is omitted
// when the extracted subject has no mapping.
type QuestionDocument struct {
	Text       string   `json:"text"`
	ImageURL   *string  `json:"imageUrl"`
	Options    []Option `json:"options"`
	Difficulty string   `json:"difficulty"`
	Subject    string   `json:"subject,omitempty"`
	Tags       []string `json:"tags"`
}

// Output is the job result: the formatted question plus its explanation,
// which is not part of the document schema but is useful downstream.
type Output struct {
	QuestionData QuestionDocument `json:"question_data"`
	Explanation  string           `json:"explanation"`
}
