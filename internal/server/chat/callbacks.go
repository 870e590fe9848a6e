package chat

// Callback data understood by the dispatcher.
const (
	CallbackCheckSubscription = "check_subscription"
	CallbackAdminPanel        = "admin_panel"
	CallbackAdminStats        = "admin_stats"
	CallbackAddChannel        = "admin_add_channel"
	CallbackListChannels      = "admin_list_channels"
	CallbackDeleteChannel     = "admin_delete_channel"
	CallbackAddContent        = "admin_add_movie"
	CallbackDeleteContent     = "admin_delete_movie"
	CallbackBroadcast         = "admin_broadcast"
	CallbackUsers             = "admin_users"
	CallbackAddAdmin          = "admin_add_admin"
	CallbackListAdmins        = "admin_list_admins"
	CallbackExport            = "admin_export"
	CallbackCancel            = "cancel"
	CallbackClose             = "admin_close"

	// Prefixes followed by a numeric id.
	CallbackDeleteChannelPrefix = "delete_channel_"
	CallbackDeleteAdminPrefix   = "delete_admin_"
)
