package wizard

const (
	promptChannel        = "Send the channel @username or numeric id.\nThe bot must be an administrator of the channel."
	promptContentCode    = "Send the code for the new content (for example: 101 or ABC1)."
	promptContentFile    = "Code %s reserved. Now send the video or document."
	promptContentTitle   = "Send the title. Additional lines become the description."
	promptDeletionCode   = "Send the code of the content to delete."
	promptBroadcast      = "Send the message to broadcast. Text, photo, video or any other message will be copied to every user."
	promptOperator       = "Send the user's numeric id or @username.\nThe user must have started the bot."
	retryIdentifier      = "That is not a valid @username or numeric id. Try again or press Cancel."
	retryCode            = "The code cannot be empty. Send a code or press Cancel."
	retryFile            = "Please send a video or a document, or press Cancel."
	retryTitle           = "The title cannot be empty. Send a title or press Cancel."
	retryUnknownUser     = "No user %s has started the bot yet. Send a numeric id or press Cancel."
	channelUnreachable   = "The bot cannot access %s. Add the bot to the channel as an administrator and try again."
	channelDuplicate     = "%s is already in the mandatory list."
	channelAdded         = "Channel %s added to the mandatory list."
	contentDuplicate     = "Code %s already exists. Nothing was saved."
	contentAdded         = "Content saved.\nCode: %s\nTitle: %s"
	contentNotFound      = "Code %s was not found."
	contentDeleted       = "Content %s deleted."
	broadcastStarted     = "Broadcast started. This may take a while."
	broadcastFinished    = "Broadcast finished.\nDelivered: %d\nFailed: %d"
	broadcastInterrupted = "Broadcast interrupted.\nDelivered: %d\nFailed: %d\nNot reached: %d"
	operatorDuplicate    = "User %d is already an admin."
	operatorAdded        = "User %s (%d) is now an admin."
	internalError        = "Something went wrong. Please try again later."
	cancelled            = "Cancelled."
	cancelButton         = "❌ Cancel"
)
