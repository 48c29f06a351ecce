package email

const (
	subjectTransferNoticeFmt = "Lead %s foi transferido"
	subjectDailyDigestFmt    = "Resumo diario de vendas %s"
)
