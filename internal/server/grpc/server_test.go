package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/ISTE-SCTCE/Admin/internal/common"
	"github.com/ISTE-SCTCE/Admin/internal/logging"
	"github.com/ISTE-SCTCE/Admin/internal/server/config"
	"github.com/ISTE-SCTCE/Admin/internal/server/metrics"
	"github.com/ISTE-SCTCE/Admin/internal/server/models"
	"github.com/ISTE-SCTCE/Admin/internal/server/notify"
	"github.com/ISTE-SCTCE/Admin/internal/server/presence"
	"github.com/ISTE-SCTCE/Admin/internal/server/repositories/repomanager"
	"github.com/ISTE-SCTCE/Admin/internal/server/services"
	"github.com/ISTE-SCTCE/Admin/internal/server/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type fixture struct {
	server *GRPCServer
	rm     repomanager.RepositoryManager
	users  *services.UserService
	conn   *grpc.ClientConn
	client *RosterClient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	log := logging.Nop()
	met := metrics.New()

	rm := repomanager.NewStoreRepositoryManager(store.NewMemoryStore())
	hub := notify.NewHub()
	t.Cleanup(hub.Close)

	tracker := presence.NewTracker(rm.Users(), cfg.PresenceWindow, log)
	directory := services.NewDirectoryService(rm, tracker, met, log)
	users := services.NewUserService(rm, directory, cfg, log)
	messages := services.NewMessageService(rm, hub, met, log)

	f := &fixture{
		server: NewGRPCServer("bufnet", log, users, directory, messages, tracker, met),
		rm:     rm,
		users:  users,
	}

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.server.Serve(ctx, lis) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	f.conn = conn
	f.client = NewRosterClient(conn)
	return f
}

func (f *fixture) login(t *testing.T, name, email, role string) (context.Context, int64) {
	t.Helper()
	ctx := context.Background()

	u, err := f.rm.Users().Create(ctx, &models.User{Name: name, Email: email, Role: role, Password: "pw"})
	require.NoError(t, err)
	_, _, err = f.server.directory.Provision(ctx, u, nil)
	require.NoError(t, err)

	sess, err := f.users.IssueToken(u)
	require.NoError(t, err)

	return metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, sess.Token), u.ID
}

func TestRoster_RequiresToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.client.Heartbeat(context.Background(), &HeartbeatRequest{})
	require.Equal(t, codes.Unauthenticated, status.Code(err))

	ctx := metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, "bogus")
	_, err = f.client.ListMembers(ctx, &ListMembersRequest{})
	require.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestRoster_HeartbeatAndList(t *testing.T) {
	f := newFixture(t)
	bob, _ := f.login(t, "Bob", "bob@iste.org", "Member")
	alice, _ := f.login(t, "Alice", "alice@iste.org", "Chair")

	hb, err := f.client.Heartbeat(bob, &HeartbeatRequest{})
	require.NoError(t, err)
	assert.True(t, hb.Success)
	assert.WithinDuration(t, time.Now(), hb.LastSeen, time.Minute)

	list, err := f.client.ListMembers(alice, &ListMembersRequest{})
	require.NoError(t, err)
	require.Len(t, list.Members, 1)
	assert.Equal(t, "bob@iste.org", list.Members[0].Email)
	assert.Equal(t, models.StatusActive, list.Members[0].Status)
}

func TestRoster_Messaging(t *testing.T) {
	f := newFixture(t)
	a, aID := f.login(t, "A", "a@iste.org", "Member")
	b, bID := f.login(t, "B", "b@iste.org", "Member")

	_, err := f.client.SendMessage(a, &SendMessageRequest{Content: "no recipient"})
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	sent, err := f.client.SendMessage(a, &SendMessageRequest{To: models.UserParty(bID), Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, models.UserParty(aID), sent.Message.From)

	forB, err := f.client.FetchThread(b, &FetchThreadRequest{TargetID: models.UserParty(aID)})
	require.NoError(t, err)
	require.Len(t, forB.Messages, 1)
	assert.False(t, forB.Messages[0].IsMine)

	forA, err := f.client.FetchThread(a, &FetchThreadRequest{TargetID: models.UserParty(bID)})
	require.NoError(t, err)
	require.Len(t, forA.Messages, 1)
	assert.True(t, forA.Messages[0].IsMine)
}

func TestRoster_DeletedUserIsUnauthenticated(t *testing.T) {
	f := newFixture(t)

	sess, err := f.users.IssueToken(&models.User{ID: 77, Name: "Ghost", Email: "g@iste.org", Role: "Member"})
	require.NoError(t, err)
	ctx := metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, sess.Token)

	_, err = f.client.Heartbeat(ctx, &HeartbeatRequest{})
	require.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestHealth_NoTokenNeeded(t *testing.T) {
	f := newFixture(t)

	resp, err := healthpb.NewHealthClient(f.conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: serviceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop(), nil, nil, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.Error(t, srv.Run(ctx))
}
