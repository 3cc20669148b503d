package storetest

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/walteh/s3rename/pkg/store"
)

// Operation names used for call counting and failure injection
const (
	OpList     = "ListObjectsV2"
	OpHead     = "HeadObject"
	OpGetACL   = "GetObjectAcl"
	OpCopy     = "CopyObject"
	OpDelete   = "DeleteObject"
	OpLocation = "GetBucketLocation"
)

// Object is a stored object. Head is returned verbatim by HeadObject.
type Object struct {
	StorageClass types.ObjectStorageClass
	Head         s3.HeadObjectOutput
	Grants       []types.Grant
}

// Bucket is an in-memory, call-counting, single bucket store.API
type Bucket struct {
	Name     string
	Location types.BucketLocationConstraint
	// PageSize caps keys per listing page when the request does not set MaxKeys
	PageSize int

	mu       sync.Mutex
	objects  map[string]*Object
	calls    map[string]int
	failures map[string]map[string]error
	copies   []*s3.CopyObjectInput
	deletes  []string

	// OnDelete, when set, runs before a delete is applied
	OnDelete func(key string)
}

// NewBucket creates an empty bucket
func NewBucket(name string) *Bucket {
	return &Bucket{
		Name:     name,
		objects:  map[string]*Object{},
		calls:    map[string]int{},
		failures: map[string]map[string]error{},
	}
}

// Put stores obj under key
func (b *Bucket) Put(key string, obj Object) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o := obj
	b.objects[key] = &o
}

// PutKeys stores empty STANDARD objects under every key
func (b *Bucket) PutKeys(keys ...string) {
	for _, key := range keys {
		b.Put(key, Object{StorageClass: types.ObjectStorageClassStandard})
	}
}

// Fail makes op fail with err for key. An empty key fails every call of op.
func (b *Bucket) Fail(op, key string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures[op] == nil {
		b.failures[op] = map[string]error{}
	}
	b.failures[op][key] = err
}

// Calls returns how many times op was invoked
func (b *Bucket) Calls(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

// MutatingCalls counts copy and delete calls
func (b *Bucket) MutatingCalls() int {
	return b.Calls(OpCopy) + b.Calls(OpDelete)
}

// Keys returns the sorted set of stored keys
func (b *Bucket) Keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sortedKeys()
}

// Object returns a copy of the stored object at key
func (b *Bucket) Object(key string) (Object, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.objects[key]
	if !ok {
		return Object{}, false
	}
	return *o, true
}

// Copies returns every successful copy request in call order
func (b *Bucket) Copies() []*s3.CopyObjectInput {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*s3.CopyObjectInput{}, b.copies...)
}

// Deletes returns every successfully deleted key in call order
func (b *Bucket) Deletes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string{}, b.deletes...)
}

func (b *Bucket) sortedKeys() []string {
	keys := make([]string, 0, len(b.objects))
	for k := range b.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// enter counts a call and returns an injected failure, if any. Callers hold mu.
func (b *Bucket) enter(op, key string) error {
	b.calls[op]++
	if errs, ok := b.failures[op]; ok {
		if err, ok := errs[key]; ok {
			return err
		}
		if err, ok := errs[""]; ok {
			return err
		}
	}
	return nil
}

func (b *Bucket) checkBucket(name *string) error {
	if aws.ToString(name) != b.Name {
		return &smithy.GenericAPIError{Code: "NoSuchBucket", Message: "The specified bucket does not exist"}
	}
	return nil
}

func noSuchKey() error {
	return &smithy.GenericAPIError{Code: "NoSuchKey", Message: "The specified key does not exist."}
}

func (b *Bucket) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.enter(OpList, aws.ToString(params.ContinuationToken)); err != nil {
		return nil, err
	}
	if err := b.checkBucket(params.Bucket); err != nil {
		return nil, err
	}

	prefix := aws.ToString(params.Prefix)
	var matching []string
	for _, k := range b.sortedKeys() {
		if strings.HasPrefix(k, prefix) {
			matching = append(matching, k)
		}
	}

	start := 0
	if params.ContinuationToken != nil {
		n, err := strconv.Atoi(*params.ContinuationToken)
		if err != nil || n < 0 || n > len(matching) {
			return nil, &smithy.GenericAPIError{Code: "InvalidArgument", Message: "The continuation token provided is incorrect"}
		}
		start = n
	}

	size := len(matching) - start
	if params.MaxKeys != nil && int(*params.MaxKeys) > 0 {
		size = int(*params.MaxKeys)
	} else if b.PageSize > 0 {
		size = b.PageSize
	}
	end := min(start+size, len(matching))

	out := &s3.ListObjectsV2Output{
		Name:              params.Bucket,
		Prefix:            params.Prefix,
		ContinuationToken: params.ContinuationToken,
		KeyCount:          aws.Int32(int32(end - start)),
		IsTruncated:       aws.Bool(end < len(matching)),
	}
	for _, k := range matching[start:end] {
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(k),
			StorageClass: b.objects[k].StorageClass,
		})
	}
	if end < len(matching) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func (b *Bucket) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := aws.ToString(params.Key)
	if err := b.enter(OpHead, key); err != nil {
		return nil, err
	}
	if err := b.checkBucket(params.Bucket); err != nil {
		return nil, err
	}
	obj, ok := b.objects[key]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NotFound", Message: "Not Found"}
	}
	head := obj.Head
	return &head, nil
}

func (b *Bucket) GetObjectAcl(ctx context.Context, params *s3.GetObjectAclInput, optFns ...func(*s3.Options)) (*s3.GetObjectAclOutput, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := aws.ToString(params.Key)
	if err := b.enter(OpGetACL, key); err != nil {
		return nil, err
	}
	if err := b.checkBucket(params.Bucket); err != nil {
		return nil, err
	}
	obj, ok := b.objects[key]
	if !ok {
		return nil, noSuchKey()
	}
	return &s3.GetObjectAclOutput{Grants: append([]types.Grant{}, obj.Grants...)}, nil
}

func (b *Bucket) CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	srcBucket, srcKey, err := parseCopySource(aws.ToString(params.CopySource))
	if err != nil {
		return nil, err
	}
	if err := b.enter(OpCopy, srcKey); err != nil {
		return nil, err
	}
	if err := b.checkBucket(params.Bucket); err != nil {
		return nil, err
	}
	if err := b.checkBucket(&srcBucket); err != nil {
		return nil, err
	}
	src, ok := b.objects[srcKey]
	if !ok {
		return nil, noSuchKey()
	}

	dst := *src
	if params.StorageClass != "" {
		dst.StorageClass = types.ObjectStorageClass(params.StorageClass)
	}
	if params.MetadataDirective == types.MetadataDirectiveReplace {
		dst.Head.Metadata = params.Metadata
		dst.Head.ContentType = params.ContentType
		dst.Head.CacheControl = params.CacheControl
	}
	b.objects[aws.ToString(params.Key)] = &dst
	b.copies = append(b.copies, params)

	return &s3.CopyObjectOutput{}, nil
}

func (b *Bucket) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	key := aws.ToString(params.Key)
	if b.OnDelete != nil {
		b.OnDelete(key)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.enter(OpDelete, key); err != nil {
		return nil, err
	}
	if err := b.checkBucket(params.Bucket); err != nil {
		return nil, err
	}
	delete(b.objects, key)
	b.deletes = append(b.deletes, key)
	return &s3.DeleteObjectOutput{}, nil
}

func (b *Bucket) GetBucketLocation(ctx context.Context, params *s3.GetBucketLocationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.enter(OpLocation, ""); err != nil {
		return nil, err
	}
	if err := b.checkBucket(params.Bucket); err != nil {
		return nil, err
	}
	return &s3.GetBucketLocationOutput{LocationConstraint: b.Location}, nil
}

func parseCopySource(src string) (string, string, error) {
	bucket, escaped, ok := strings.Cut(strings.TrimPrefix(src, "/"), "/")
	if !ok {
		return "", "", &smithy.GenericAPIError{Code: "InvalidArgument", Message: "Invalid copy source"}
	}
	key, err := url.PathUnescape(escaped)
	if err != nil {
		return "", "", &smithy.GenericAPIError{Code: "InvalidArgument", Message: err.Error()}
	}
	return bucket, key, nil
}

var _ store.API = (*Bucket)(nil)
