package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Conversations handles GET /messages/conversations.
func Conversations(c *fiber.Ctx) error {
	summaries, err := messages.Conversations(c.Context(), userID(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, summaries)
}

// Conversation handles GET /messages/conversation/:otherUserId?limit=&skip=.
// Fetching a conversation marks the other user's messages as read.
func Conversation(c *fiber.Ctx) error {
	viewer := userID(c)
	otherUserID := c.Params("otherUserId")
	limit := c.QueryInt("limit", 0)
	skip := c.QueryInt("skip", 0)

	msgs, err := messages.Conversation(c.Context(), viewer, otherUserID, limit, skip)
	if err != nil {
		return fail(c, err)
	}

	if _, err := messages.MarkRead(c.Context(), otherUserID, viewer); err != nil {
		logrus.WithError(err).WithField("userId", viewer).Error("Failed to mark conversation as read")
	}

	return ok(c, msgs)
}

// UnreadCount handles GET /messages/unread-count.
func UnreadCount(c *fiber.Ctx) error {
	count, err := messages.UnreadCount(c.Context(), userID(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"count": count})
}

// DeleteMessage handles DELETE /messages/message/:messageId — hides the
// message for the caller only.
func DeleteMessage(c *fiber.Ctx) error {
	msg, err := messages.DeleteMessage(c.Context(), userID(c), c.Params("messageId"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, msg)
}

// DeleteConversation handles DELETE /messages/conversation/:otherUserId —
// hides the whole conversation for the caller only.
func DeleteConversation(c *fiber.Ctx) error {
	count, err := messages.DeleteConversation(c.Context(), userID(c), c.Params("otherUserId"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"deletedCount": count})
}
