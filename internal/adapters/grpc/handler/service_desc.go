package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName は登録するサービスの完全修飾名です。
const ServiceName = "isg.v1.ComplianceService"

// ComplianceServiceServer は ComplianceService のサーバー側インターフェースです。
// メッセージはすべて google.protobuf.Struct で表現します。
type ComplianceServiceServer interface {
	GetDashboard(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetDailySummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetMonthlyPlan(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetPlanningReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CreateFirm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListFirms(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CreateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	TerminateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ApproveEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	EvaluateRehire(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	RehireEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	RecordEquipment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	RecordRiskAssessment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	RecordBoardMeeting(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListEmployees(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	BulkUpdateTraining(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CreateNote(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	DeleteNote(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CreateUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListUsers(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetReportSettings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpdateReportSettings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(ComplianceServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ComplianceServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ComplianceServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ComplianceServiceDesc は ComplianceService の grpc.ServiceDesc です。
var ComplianceServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ComplianceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("GetDashboard", ComplianceServiceServer.GetDashboard),
		unaryMethod("GetDailySummary", ComplianceServiceServer.GetDailySummary),
		unaryMethod("GetMonthlyPlan", ComplianceServiceServer.GetMonthlyPlan),
		unaryMethod("GetPlanningReport", ComplianceServiceServer.GetPlanningReport),
		unaryMethod("CreateFirm", ComplianceServiceServer.CreateFirm),
		unaryMethod("ListFirms", ComplianceServiceServer.ListFirms),
		unaryMethod("CreateEmployee", ComplianceServiceServer.CreateEmployee),
		unaryMethod("TerminateEmployee", ComplianceServiceServer.TerminateEmployee),
		unaryMethod("ApproveEmployee", ComplianceServiceServer.ApproveEmployee),
		unaryMethod("EvaluateRehire", ComplianceServiceServer.EvaluateRehire),
		unaryMethod("RehireEmployee", ComplianceServiceServer.RehireEmployee),
		unaryMethod("RecordEquipment", ComplianceServiceServer.RecordEquipment),
		unaryMethod("RecordRiskAssessment", ComplianceServiceServer.RecordRiskAssessment),
		unaryMethod("RecordBoardMeeting", ComplianceServiceServer.RecordBoardMeeting),
		unaryMethod("ListEmployees", ComplianceServiceServer.ListEmployees),
		unaryMethod("BulkUpdateTraining", ComplianceServiceServer.BulkUpdateTraining),
		unaryMethod("CreateNote", ComplianceServiceServer.CreateNote),
		unaryMethod("DeleteNote", ComplianceServiceServer.DeleteNote),
		unaryMethod("CreateUser", ComplianceServiceServer.CreateUser),
		unaryMethod("ListUsers", ComplianceServiceServer.ListUsers),
		unaryMethod("GetReportSettings", ComplianceServiceServer.GetReportSettings),
		unaryMethod("UpdateReportSettings", ComplianceServiceServer.UpdateReportSettings),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "isg/v1/compliance.proto",
}

// RegisterComplianceServiceServer はサーバーに ComplianceService を登録します。
func RegisterComplianceServiceServer(s grpc.ServiceRegistrar, srv ComplianceServiceServer) {
	s.RegisterService(&ComplianceServiceDesc, srv)
}

// ComplianceClient は ComplianceService のクライアントです。
type ComplianceClient struct {
	cc grpc.ClientConnInterface
}

// NewComplianceClient は ComplianceClient を生成します。
func NewComplianceClient(cc grpc.ClientConnInterface) *ComplianceClient {
	return &ComplianceClient{cc: cc}
}

// Call は method を呼び出します。
func (c *ComplianceClient) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
