package usecase

import (
	"net/http"
	"time"

	"campusmarket/pkg/errors"
)

const (
	CodeInvalidParticipants = "INVALID_PARTICIPANTS"
	CodeNotParticipant      = "NOT_PARTICIPANT"
	CodeItemNotFound        = "ITEM_NOT_FOUND"
	CodeNotOwner            = "NOT_OWNER"
	CodeAlreadySold         = "ALREADY_SOLD"
	CodeMessageNotFound     = "MESSAGE_NOT_FOUND"
	CodeNotACardMessage     = "NOT_A_CARD_MESSAGE"
	CodeAlreadyAccepted     = "ALREADY_ACCEPTED"
	CodeItemMismatch        = "ITEM_MISMATCH"
	CodeAlreadyReported     = "ALREADY_REPORTED"
	CodeCannotReportOwnItem = "CANNOT_REPORT_OWN_ITEM"
	CodePriceTooHigh        = "PRICE_TOO_HIGH"
	CodeEmailNotVerified    = "EMAIL_NOT_VERIFIED"
	CodeValidation          = "VALIDATION_ERROR"
)

func invalidParticipants(err error) *errors.AppError {
	return errors.New(CodeInvalidParticipants, "A conversation needs two distinct users", http.StatusBadRequest, err)
}

func notParticipant() *errors.AppError {
	return errors.New(CodeNotParticipant, "You are not a participant of this conversation", http.StatusForbidden, nil)
}

func itemNotFound(err error) *errors.AppError {
	return errors.New(CodeItemNotFound, "Item not found", http.StatusNotFound, err)
}

func notOwner() *errors.AppError {
	return errors.New(CodeNotOwner, "Only the owner can do this", http.StatusForbidden, nil)
}

func alreadySold() *errors.AppError {
	return errors.New(CodeAlreadySold, "Item already sold", http.StatusConflict, nil)
}

func messageNotFound(err error) *errors.AppError {
	return errors.New(CodeMessageNotFound, "Message not found", http.StatusNotFound, err)
}

func notACardMessage() *errors.AppError {
	return errors.New(CodeNotACardMessage, "Message is not an offer card", http.StatusBadRequest, nil)
}

func alreadyAccepted() *errors.AppError {
	return errors.New(CodeAlreadyAccepted, "Offer already accepted", http.StatusConflict, nil)
}

func itemMismatch() *errors.AppError {
	return errors.New(CodeItemMismatch, "The card refers to a different item", http.StatusBadRequest, nil)
}

func alreadyReported() *errors.AppError {
	return errors.New(CodeAlreadyReported, "You have already reported this item", http.StatusConflict, nil)
}

func cannotReportOwnItem() *errors.AppError {
	return errors.New(CodeCannotReportOwnItem, "You cannot report your own item", http.StatusBadRequest, nil)
}

func priceTooHigh() *errors.AppError {
	return errors.New(CodePriceTooHigh, "Price cannot exceed €2000", http.StatusBadRequest, nil)
}

func emailNotVerified() *errors.AppError {
	return errors.New(CodeEmailNotVerified, "Please verify your email before listing items", http.StatusForbidden, nil)
}

func validation(message string) *errors.AppError {
	return errors.New(CodeValidation, message, http.StatusBadRequest, nil)
}

func rateLimited(wait time.Duration) *errors.AppError {
	return errors.TooManyRequests("Rate limit exceeded. Please wait " + wait.Round(time.Second).String() + " before trying again")
}

// Limiter is satisfied by *ratelimit.RateLimiter.
type Limiter interface {
	Allow(userID, action string) (bool, time.Duration)
}
