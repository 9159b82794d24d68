package normalize

import (
	"testing"

	"github.com/lodelisp/lode/internal/form"
	"github.com/lodelisp/lode/internal/reader"
)

func parse(t *testing.T, s string) form.I {
	t.Helper()

	forms, err := reader.Parse("test", s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}

	if len(forms) != 1 {
		t.Fatalf("Parse(%q) = %d forms, want 1", s, len(forms))
	}

	return forms[0]
}

func checkForm(t *testing.T, in, want string) {
	t.Helper()

	if got := Form(parse(t, in)).String(); got != want {
		t.Errorf("normalizing %q:\n got %q\nwant %q", in, got, want)
	}
}

func unchanged(t *testing.T, in string) {
	t.Helper()

	c := parse(t, in)
	if got := Form(c); !got.Equal(c) {
		t.Errorf("normalizing %q changed it to %q", in, got.String())
	}
}

func TestNoDefinitions(t *testing.T) {
	unchanged(t, "(define (f x) (g x) (h x))")
	unchanged(t, "(lambda (x) (* x x))")
	unchanged(t, "(+ 1 2)")
	unchanged(t, "x")
}

func TestCompliantBody(t *testing.T) {
	// Definitions before every plain expression stay where they are.
	unchanged(t, "(define (f) (define a 1) (define (g) a) (g))")
	unchanged(t, "(let ((x 1)) (define y 2) (+ x y))")
}

func TestQuotedDataUntouched(t *testing.T) {
	unchanged(t, "(quote (f (show 1) (define (h) 2) (h)))")
	unchanged(t, "(define (f) '((show 1) (define x 2) x))")
	unchanged(t, "(quasiquote ((show 1) (define x 2)))")
}

func TestRewrite(t *testing.T) {
	// expr-a before a define forces the letrec rewrite, with the plain
	// expressions kept in original order.
	checkForm(t,
		"(define (top) (expr-a) (define f 1) (f 2))",
		"(define (top) (letrec ((f 1)) (expr-a) (f 2)))")
}

func TestRewriteFunctionShaped(t *testing.T) {
	checkForm(t,
		"(define (g) (show 1) (define (h) (show 2)) (h))",
		"(define (g) (letrec ((h (lambda () (show 2)))) (show 1) (h)))")
}

func TestRewriteMultiFormValue(t *testing.T) {
	checkForm(t,
		"(define (g) (show 1) (define x (a) (b)) x)",
		"(define (g) (letrec ((x (begin (a) (b)))) (show 1) x))")
}

func TestRewriteNoTrailingExpressions(t *testing.T) {
	// The leading expression becomes the letrec body; nothing is added.
	checkForm(t,
		"(define (g) (show 1) (define x 2))",
		"(define (g) (letrec ((x 2)) (show 1)))")
}

func TestRewritePlaceholder(t *testing.T) {
	// Body never hands rewrite an all-definition body (it is compliant),
	// but a letrec still needs at least one body form when that happens.
	out := rewrite([]form.I{parse(t, "(define x 2)")})

	if len(out) != 1 {
		t.Fatalf("rewritten body has %d forms, want 1", len(out))
	}

	if got := out[0].String(); got != "(letrec ((x 2)) #t)" {
		t.Errorf("rewritten body %q, want %q", got, "(letrec ((x 2)) #t)")
	}
}

func TestMutualRecursion(t *testing.T) {
	// Both helpers land in one letrec, so each sees the other no matter
	// the declaration order.
	checkForm(t,
		"(define (top) (define (even? n) (if (= n 0) #t (odd? (- n 1)))) (start) (define (odd? n) (if (= n 0) #f (even? (- n 1)))) (even? 10))",
		"(define (top) (letrec ((even? (lambda (n) (if (= n 0) #t (odd? (- n 1))))) (odd? (lambda (n) (if (= n 0) #f (even? (- n 1)))))) (start) (even? 10)))")
}

func TestNestedBodies(t *testing.T) {
	// Nested bodies are normalized even when the outer body is compliant.
	checkForm(t,
		"(define (outer) (lambda (x) (use x) (define y 1) y))",
		"(define (outer) (lambda (x) (letrec ((y 1)) (use x) y)))")

	checkForm(t,
		"(let ((f (lambda () (a) (define b 1) b))) (f))",
		"(let ((f (lambda () (letrec ((b 1)) (a) b)))) (f))")
}

func TestLetFamily(t *testing.T) {
	checkForm(t,
		"(let ((x 1)) (go x) (define y 2) y)",
		"(let ((x 1)) (letrec ((y 2)) (go x) y))")

	checkForm(t,
		"(let* ((x 1)) (go x) (define y 2) y)",
		"(let* ((x 1)) (letrec ((y 2)) (go x) y))")

	// Named let skips the loop name.
	checkForm(t,
		"(let loop ((i 0)) (step i) (define (next) (loop (+ i 1))) (next))",
		"(let loop ((i 0)) (letrec ((next (lambda () (loop (+ i 1))))) (step i) (next)))")
}

func TestOddDefinesAreExpressions(t *testing.T) {
	// Defines that fit neither shape are not guessed at. They count as
	// plain expressions, so following definitions still trigger a rewrite.
	checkForm(t,
		"(define (g) (define x) (define y 1) y)",
		"(define (g) (letrec ((y 1)) (define x) y))")

	unchanged(t, "(define (g) (define x) (f))")
}

func TestBodyNoOp(t *testing.T) {
	body := []form.I{parse(t, "(a)"), parse(t, "(b)")}

	out := Body(body)
	if len(out) != 2 || !out[0].Equal(body[0]) || !out[1].Equal(body[1]) {
		t.Error("compliant body was restructured")
	}
}

func TestBodyRewrite(t *testing.T) {
	body := []form.I{
		parse(t, "(expr-a)"),
		parse(t, "(define f 1)"),
		parse(t, "(f 2)"),
	}

	out := Body(body)
	if len(out) != 1 {
		t.Fatalf("rewritten body has %d forms, want 1", len(out))
	}

	if got := out[0].String(); got != "(letrec ((f 1)) (expr-a) (f 2))" {
		t.Errorf("rewritten body %q", got)
	}
}
