package s3

// Credentials holds the connection parameters for an S3-compatible endpoint.
// Hand-written replacement for the oapi-codegen-generated type the teacher
// derived from openapi.yaml (that spec file was not part of the retrieved
// pack, so the shape is reconstructed from call sites in minio.go).
type Credentials struct {
	Endpoint        string
	AccessKeyId     string
	SecretAccessKey string
	SessionToken    string
	UseSsl          bool
}
