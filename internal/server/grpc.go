package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/schedule-ingest/internal/common"
	"github.com/joseph-ayodele/schedule-ingest/internal/pipeline"
)

const ServiceName = "schedule.v1.ScheduleParser"

// Full method names served by ScheduleParserService.
const (
	MethodParseSchedule  = "/" + ServiceName + "/ParseSchedule"
	MethodImportSchedule = "/" + ServiceName + "/ImportSchedule"
)

// ScheduleParserServer mirrors the HTTP endpoints. Requests and responses are
// google.protobuf.Struct values with the same JSON shape as the HTTP bodies;
// ImportSchedule reads the schedule id from "scheduleId".
type ScheduleParserServer interface {
	ParseSchedule(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ImportSchedule(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type ScheduleParserService struct {
	svc    ScheduleService
	logger *slog.Logger
}

func NewScheduleParserService(svc ScheduleService, logger *slog.Logger) *ScheduleParserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleParserService{svc: svc, logger: logger}
}

func (s *ScheduleParserService) ParseSchedule(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := inputFromStruct(req)
	if err != nil {
		return nil, common.InvalidArgumentError(err.Error())
	}
	res, err := s.svc.ParseSchedule(ctx, in)
	if err != nil {
		s.logger.Warn("grpc.parse.failed", "error", err)
		return nil, common.GRPCStatus(err)
	}
	return toStruct(res)
}

func (s *ScheduleParserService) ImportSchedule(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := inputFromStruct(req)
	if err != nil {
		return nil, common.InvalidArgumentError(err.Error())
	}
	scheduleID := req.GetFields()["scheduleId"].GetStringValue()
	res, n, err := s.svc.ImportSchedule(ctx, scheduleID, in)
	if err != nil {
		s.logger.Warn("grpc.import.failed", "schedule_id", scheduleID, "error", err)
		return nil, common.GRPCStatus(err)
	}
	return toStruct(importResponse{ParseResult: res, Saved: n})
}

func inputFromStruct(req *structpb.Struct) (pipeline.RawInput, error) {
	var in pipeline.RawInput
	b, err := req.MarshalJSON()
	if err != nil {
		return in, err
	}
	if err := json.Unmarshal(b, &in); err != nil {
		return in, common.WrapError(err, "decode request")
	}
	return in, nil
}

func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	out := &structpb.Struct{}
	if err := out.UnmarshalJSON(b); err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return out, nil
}

func parseScheduleHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ScheduleParserServer).ParseSchedule(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodParseSchedule}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(ScheduleParserServer).ParseSchedule(ctx, req.(*structpb.Struct))
	})
}

func importScheduleHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ScheduleParserServer).ImportSchedule(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodImportSchedule}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(ScheduleParserServer).ImportSchedule(ctx, req.(*structpb.Struct))
	})
}

var scheduleParserDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ScheduleParserServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ParseSchedule", Handler: parseScheduleHandler},
		{MethodName: "ImportSchedule", Handler: importScheduleHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "schedule/v1/schedule.proto",
}

// NewGRPCServer registers the parser and the standard health service.
func NewGRPCServer(svc ScheduleService, logger *slog.Logger, opts ...grpc.ServerOption) *grpc.Server {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append([]grpc.ServerOption{
		grpc.MaxRecvMsgSize(maxBodyBytes),
		grpc.ChainUnaryInterceptor(loggingInterceptor(logger)),
	}, opts...)
	s := grpc.NewServer(opts...)
	s.RegisterService(&scheduleParserDesc, NewScheduleParserService(svc, logger))

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	return s
}

func loggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, reqID := common.EnsureRequestID(ctx)
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("grpc.request",
			"req_id", reqID,
			"method", info.FullMethod,
			"ok", err == nil,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}
