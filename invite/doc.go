// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package invite provides id and invite code generation utilities.

# ID Generation

Random UUIDs for database records:

	id := invite.NewID()

Used for conversations, comments, participants, and reports.

# Invite Codes

Invite codes are short shareable handles for joining a conversation:

	code, err := invite.NewCode()

Codes are 64 random bits encoded base62 (alphanumeric only) so they stay
URL-friendly. They carry no structure; the conversation row is the only
mapping from code to conversation.
*/
package invite
