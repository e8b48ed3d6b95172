package domain

// Profile is the display projection of a user owned by the external account
// store. Only the fields needed for read-time enrichment are modeled here.
type Profile struct {
	UserID    string `json:"id" dynamodbav:"user_id"`
	Name      string `json:"name" dynamodbav:"name"`
	AvatarURL string `json:"avatar_url,omitempty" dynamodbav:"avatar_url"`
}
