// Package queue defines message payloads exchanged over the message broker.
package queue

// SignupQueue is the durable queue carrying SignupEvent messages.
const SignupQueue = "user.signup"

// SignupEvent is published when a user signs up or asks for the
// confirmation email again.  It carries enough information for the
// consumer to mail a confirmation link without querying the database.
//
// Fields:
//  Email    – recipient and subject of the confirmation token.
//  Username – display name used in the greeting.
//  HostURL  – public base URL the confirmation link points at.
type SignupEvent struct {
    Email    string `json:"email"`
    Username string `json:"username"`
    HostURL  string `json:"host_url"`
}
