package wishlist

import "errors"

var (
	// -- Authentication/Authorization --
	ErrUnauthorized = errors.New("user not authenticated")

	// -- Account State --
	ErrAccountNotProvisioned = errors.New("account is not provisioned for wishlists")

	// -- Remote Failures --
	ErrRemoteRejected    = errors.New("wishlist request rejected by server")
	ErrFailedFetchRemote = errors.New("failed to fetch remote wishlist")
	ErrFailedSyncRemote  = errors.New("failed to sync wishlist with server")
)

// Notice maps an operation error to the message shown to the shopper.
// Remote outcomes get a differentiated message; anything else, including a
// failed local persist surfaced by Toggle, falls through to the generic one.
func Notice(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return "Please sign in to save items to your wishlist."
	case errors.Is(err, ErrAccountNotProvisioned):
		return "Your account needs attention. Please contact support."
	default:
		return "Something went wrong updating your wishlist. Please try again."
	}
}
