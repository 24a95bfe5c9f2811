package domain

// UploadToken 工单系统返回的附件上传令牌
type UploadToken string

// TicketPayload 发送到工单系统创建请求接口的数据
type TicketPayload struct {
	Request TicketRequest `json:"request"`
}

// TicketRequest 工单主体
type TicketRequest struct {
	Subject   string        `json:"subject"`
	Comment   TicketComment `json:"comment"`
	Requester Requester     `json:"requester"`
}

// TicketComment 工单首条评论，Uploads 始终序列化为数组
type TicketComment struct {
	Body    string        `json:"body"`
	Uploads []UploadToken `json:"uploads"`
}

// Requester 工单发起人
type Requester struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SubmissionResult 工单创建成功后的结果
type SubmissionResult struct {
	TicketID int64
	Status   string
}
