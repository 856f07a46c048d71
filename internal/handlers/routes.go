package handlers

import (
	"net/http"
	"time"
)

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{
		Accounts: deps.Accounts,
		Profiles: deps.ProfileCreator,
		Sessions: deps.Sessions,
		Cache:    deps.Cache,
		Limiter:  deps.AuthLimiter,
		NowFunc:  deps.NowFunc,
	}
	profiles := ProfileHandler{Profiles: deps.Profiles}
	friends := FriendHandler{Friends: deps.Friends}
	groups := GroupHandler{Groups: deps.Groups}
	snaps := SnapHandler{Snaps: deps.Snaps}
	subscriptions := SubscriptionHandler{
		Subscriptions: deps.Subscriptions,
		Sender:        deps.Push,
		NowFunc:       deps.NowFunc,
	}

	mux.HandleFunc("/healthz", health.Handle)
	mux.HandleFunc("/api/v1/auth/signup", auth.SignUp)
	mux.HandleFunc("/api/v1/auth/login", auth.Login)
	mux.HandleFunc("/api/v1/auth/refresh", auth.Refresh)
	mux.HandleFunc("/api/v1/auth/logout", auth.Logout)
	mux.HandleFunc("/api/v1/profiles", profiles.Get)
	mux.HandleFunc("/api/v1/profiles/search", profiles.Search)
	mux.HandleFunc("/api/v1/profiles/username", profiles.UpdateUsername)
	mux.HandleFunc("/api/v1/profiles/avatar", profiles.UpdateAvatar)
	mux.HandleFunc("/api/v1/friends", friends.List)
	mux.HandleFunc("/api/v1/friends/request", friends.Send)
	mux.HandleFunc("/api/v1/friends/accept", friends.Accept)
	mux.HandleFunc("/api/v1/friends/reject", friends.Reject)
	mux.HandleFunc("/api/v1/groups", groups.List)
	mux.HandleFunc("/api/v1/groups/create", groups.Create)
	mux.HandleFunc("/api/v1/groups/get", groups.Get)
	mux.HandleFunc("/api/v1/groups/join", groups.Join)
	mux.HandleFunc("/api/v1/groups/leave", groups.Leave)
	mux.HandleFunc("/api/v1/groups/delete", groups.Delete)
	mux.HandleFunc("/api/v1/groups/members", groups.Members)
	mux.HandleFunc("/api/v1/snaps", snaps.List)
	mux.HandleFunc("/api/v1/snaps/upload", snaps.Upload)
	mux.HandleFunc("/api/v1/snaps/get", snaps.Get)
	mux.HandleFunc("/api/v1/snaps/url", snaps.URL)
	mux.HandleFunc("/api/v1/snaps/delete", snaps.Delete)
	mux.HandleFunc("/api/v1/push/subscribe", subscriptions.Subscribe)
	mux.HandleFunc("/api/v1/push/unsubscribe", subscriptions.Unsubscribe)
	mux.HandleFunc("/api/v1/push/vapid-key", subscriptions.VAPIDKey)
	mux.HandleFunc("/api/v1/push/test", subscriptions.Test)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Accounts       AccountStore
	ProfileCreator ProfileCreator
	Sessions       SessionManager
	Cache          CacheFlusher
	AuthLimiter    RateLimiter
	Profiles       ProfileService
	Friends        FriendService
	Groups         GroupService
	Snaps          SnapService
	Subscriptions  SubscriptionStore
	Push           PushSender
	NowFunc        func() time.Time
}
