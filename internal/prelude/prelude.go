// Package prelude holds the small Lisp-level standard library spec.md
// §1 describes sitting on top of the core ("a plain source input...
// consumed by the core exactly as any other program"): list helpers,
// `defn`, `quasiquote`'s macro-level expansion, and the REPL-time
// `expand-toplevel` wrapper from spec.md §9's Open Questions (its
// counterpart `def-export` is a core primitive — see primitives.go).
// None of it is special-cased by the evaluator — it loads the same
// way user source does.
package prelude

// Source is evaluated once, before any user program, by cmd/shi.
const Source = `
(def list (fn xs xs))

(def defn
  (macro (name params . body)
    (list 'def name (cons 'fn (cons params body)))))

(defn map (f xs)
  (if (eq? xs nil)
      nil
      (cons (f (car xs)) (map f (cdr xs)))))

(defn filter (pred xs)
  (if (eq? xs nil)
      nil
      (if (pred (car xs))
          (cons (car xs) (filter pred (cdr xs)))
          (filter pred (cdr xs)))))

(defn reduce (f init xs)
  (if (eq? xs nil)
      init
      (reduce f (f init (car xs)) (cdr xs))))

(defn length-of (xs)
  (reduce (fn (acc x) (+ acc 1)) 0 xs))

(defn append (xs ys)
  (if (eq? xs nil)
      ys
      (cons (car xs) (append (cdr xs) ys))))

;; The reader desugars @x to (unbox x); spec.md §4.5 never pins down
;; what unbox itself does, so it is given the simplest one: evaluate
;; and pass through its argument unchanged.
(defn unbox (x) x)

;; The reader desugars a quasiquoted form into nested quasiquote/
;; unquote/unquote-splicing forms (spec.md §4.5); this macro walks the
;; resulting tree at expansion time and rebuilds it with unquoted
;; pieces evaluated and unquote-spliced lists appended in place.
(def quasiquote
  (macro (form)
    (qq-expand form)))

(defn qq-expand (form)
  (if (eq? (type form) 'cell)
      (qq-expand-cell form)
      (list 'quote form)))

(defn qq-expand-cell (form)
  (if (eq? (car form) 'unquote)
      (car (cdr form))
      (if (if (eq? (type (car form)) 'cell) (eq? (car (car form)) 'unquote-splicing) nil)
          (list 'append (car (cdr (car form))) (qq-expand (cdr form)))
          (list 'cons (qq-expand (car form)) (qq-expand (cdr form))))))

;; def-export is a core primitive, not defined here: binding under a
;; Symbol value computed at runtime needs evaluated-args dispatch,
;; which def-global (a raw-args special form) cannot give it.

;; expand-toplevel rewrites a single top-level (def name val) into
;; (def-export (quote name) val); every other form, and nested do
;; bodies, pass through unchanged (spec.md §9's Open Question: the
;; rewrite is intentionally shallow, REPL-only).
(defn expand-toplevel (form)
  (if (eq? (type form) 'cell)
      (if (eq? (car form) 'def)
          (cons 'def-export (cons (list 'quote (car (cdr form))) (cdr (cdr form))))
          form)
      form))
`
