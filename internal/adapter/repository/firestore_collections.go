package repository

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	usersCollection         = "users"
	itemsCollection         = "items"
	conversationsCollection = "conversations"
	messagesCollection      = "messages"

	// getAll accepts at most this many references per call.
	getAllBatchSize = 30
)

func IsNotFound(err error) bool {
	return err != nil && status.Code(err) == codes.NotFound
}

func IsAlreadyExists(err error) bool {
	return err != nil && status.Code(err) == codes.AlreadyExists
}
