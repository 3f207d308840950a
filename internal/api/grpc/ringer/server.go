package ringer

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/Asami3315/Emergency-Ringer/internal/alert"
	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	HandleNotification(ctx context.Context, event *domain.NotificationEvent) domain.Verdict
	Trigger(ctx context.Context, actor *domain.Actor, req alert.Request) domain.AlertStatus
	Stop(ctx context.Context, actor *domain.Actor) domain.AlertStatus
	Status(ctx context.Context) (*domain.Status, error)
	ListContacts(ctx context.Context) ([]domain.TrustedContact, bool, error)
	AddContact(ctx context.Context, actor *domain.Actor, contact domain.TrustedContact) (bool, error)
	RemoveContact(ctx context.Context, actor *domain.Actor, contact domain.TrustedContact) (bool, error)
	SetMonitoring(ctx context.Context, actor *domain.Actor, enabled bool) (bool, error)
}

// Server implements the RingerService gRPC API.
type Server struct {
	// service provides the business logic.
	service Service
}

var _ RingerServiceServer = (*Server)(nil)

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// PostNotification classifies a notification and reports the verdict.
// A trusted call also starts the alert.
func (s *Server) PostNotification(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	event, err := EventFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	return VerdictToStruct(s.service.HandleNotification(ctx, event)), nil
}

// Trigger starts a manual alert.
func (s *Server) Trigger(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	request, err := TriggerRequestFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	return AlertStatusToStruct(s.service.Trigger(ctx, ActorFromContext(ctx), request)), nil
}

// Stop ends the running alert.
func (s *Server) Stop(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return AlertStatusToStruct(s.service.Stop(ctx, ActorFromContext(ctx))), nil
}

// GetStatus reports the daemon status.
func (s *Server) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	current, err := s.service.Status(ctx)
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to read status")
	}

	return StatusToStruct(current), nil
}

// ListContacts returns the trusted contacts and the monitoring switch.
func (s *Server) ListContacts(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	contacts, monitoring, err := s.service.ListContacts(ctx)
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to read contacts")
	}

	return ContactsToStruct(contacts, monitoring), nil
}

// AddContact stores a trusted contact.
func (s *Server) AddContact(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.mutateContact(ctx, req, s.service.AddContact)
}

// RemoveContact deletes a trusted contact.
func (s *Server) RemoveContact(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.mutateContact(ctx, req, s.service.RemoveContact)
}

// SetMonitoring switches call monitoring.
func (s *Server) SetMonitoring(ctx context.Context, req *wrapperspb.BoolValue) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	enabled, err := s.service.SetMonitoring(ctx, ActorFromContext(ctx), req.GetValue())
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to persist monitoring state")
	}

	return MonitoringToStruct(enabled), nil
}

func (s *Server) mutateContact(
	ctx context.Context,
	req *structpb.Struct,
	mutate func(context.Context, *domain.Actor, domain.TrustedContact) (bool, error),
) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	contact, err := ContactFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	changed, err := mutate(ctx, ActorFromContext(ctx), contact)

	switch {
	case errors.Is(err, domain.ErrInvalidContact):
		return nil, status.Error(codes.InvalidArgument, err.Error())
	case err != nil:
		return nil, status.Error(codes.Internal, "unable to persist contacts")
	}

	return ChangedToStruct(changed), nil
}
