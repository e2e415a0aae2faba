package server

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/core/document"
	"github.com/joseph-ayodele/docextract/internal/services/documents"
)

// DocumentsServiceName is the fully qualified gRPC service name. Requests and
// responses are google.protobuf.Struct messages.
const DocumentsServiceName = "docextract.v1.Documents"

// DocumentProcessor is the invocation layer exposed over gRPC.
type DocumentProcessor interface {
	ProcessOne(ctx context.Context, id uuid.UUID) (document.Result, error)
	Retry(ctx context.Context, id uuid.UUID) (document.Result, error)
	ProcessAllPending(ctx context.Context, applicationID string) (documents.Summary, error)
}

// DocumentsService adapts RPC requests into invocation-layer calls.
type DocumentsService struct {
	svc    DocumentProcessor
	logger *slog.Logger
}

func NewDocumentsService(svc DocumentProcessor, logger *slog.Logger) *DocumentsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentsService{svc: svc, logger: logger}
}

// Register attaches the service to s.
func (d *DocumentsService) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(&documentsServiceDesc, d)
}

// ProcessOne expects {"documentId": "<uuid>"} and returns the extraction result.
func (d *DocumentsService) ProcessOne(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := documentID(req)
	if err != nil {
		return nil, err
	}
	res, err := d.svc.ProcessOne(ctx, id)
	if err != nil {
		d.logger.Warn("rpc process one failed", "document_id", id, "error", err)
		return nil, common.ToStatus(err)
	}
	return resultResponse(res)
}

// Retry expects {"documentId": "<uuid>"} and returns the extraction result.
func (d *DocumentsService) Retry(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := documentID(req)
	if err != nil {
		return nil, err
	}
	res, err := d.svc.Retry(ctx, id)
	if err != nil {
		d.logger.Warn("rpc retry failed", "document_id", id, "error", err)
		return nil, common.ToStatus(err)
	}
	return resultResponse(res)
}

// ProcessAllPending expects {"applicationId": "..."} and returns outcome counts.
func (d *DocumentsService) ProcessAllPending(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	app := strings.TrimSpace(req.GetFields()["applicationId"].GetStringValue())
	if app == "" {
		return nil, status.Error(codes.InvalidArgument, "applicationId is required")
	}
	sum, err := d.svc.ProcessAllPending(ctx, app)
	if err != nil {
		d.logger.Warn("rpc process all pending failed", "application_id", app, "error", err)
		return nil, common.ToStatus(err)
	}
	return structpb.NewStruct(map[string]any{
		"total":     sum.Total,
		"completed": sum.Completed,
		"failed":    sum.Failed,
	})
}

func documentID(req *structpb.Struct) (uuid.UUID, error) {
	raw := strings.TrimSpace(req.GetFields()["documentId"].GetStringValue())
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, status.Error(codes.InvalidArgument, "documentId must be a UUID")
	}
	return id, nil
}

func resultResponse(res document.Result) (*structpb.Struct, error) {
	out, err := documents.ResultStruct(res)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

type documentsServer interface {
	ProcessOne(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Retry(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ProcessAllPending(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func unaryHandler(name string, call func(documentsServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(documentsServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + DocumentsServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(documentsServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

var documentsServiceDesc = grpc.ServiceDesc{
	ServiceName: DocumentsServiceName,
	HandlerType: (*documentsServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("ProcessOne", documentsServer.ProcessOne),
		unaryHandler("Retry", documentsServer.Retry),
		unaryHandler("ProcessAllPending", documentsServer.ProcessAllPending),
	},
	Streams: []grpc.StreamDesc{},
}
