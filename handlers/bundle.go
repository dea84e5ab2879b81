package handlers

// HandlerBundle groups the endpoint handlers the router registers.
type HandlerBundle struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Services      *ServiceHandler
	Swaps         *SwapHandler
	Feed          *FeedHandler
	Connections   *ConnectionHandler
	Notifications *NotificationHandler
	Subscriptions *SubscriptionHandler
	Assistant     *AssistantHandler
	Admin         *AdminHandler
}
