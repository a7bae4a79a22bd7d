package users

// User is the persisted account record. The password and salt fields hold
// base64-encoded PBKDF2 output and are never serialized into responses.
type User struct {
	ID           string `bson:"_id,omitempty" json:"id"`
	Username     string `bson:"name" json:"username"`
	Email        string `bson:"email" json:"email"`
	Phone        string `bson:"contact_phone" json:"contact_phone"`
	PasswordHash string `bson:"password" json:"-"`
	Salt         string `bson:"salt" json:"-"`
}
