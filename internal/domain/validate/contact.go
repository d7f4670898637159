package validate

// Contact-form field names and rules. The three fields are fixed: name and
// email are required, email must be well-formed, and the message has a
// minimum length.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldMessage = "message"

	// MessageMinLength is the minimum number of characters for the free-text
	// message field.
	MessageMinLength = 10
)

// ContactFields builds the fixed rule set for a contact submission.
func ContactFields(name, email, msg string) []Field {
	return []Field{
		{Name: FieldName, Value: name, Required: true, Type: TypeText},
		{Name: FieldEmail, Value: email, Required: true, Type: TypeEmail},
		{Name: FieldMessage, Value: msg, Required: true, Type: TypeText, MinLength: MessageMinLength},
	}
}
